// Package ingest runs the daily job that fills the catalogue with mock flights.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 2 * time.Minute

type AirportLister interface {
	List(ctx context.Context) ([]domain.Airport, error)
}

type FlightCreator interface {
	CreateBatch(ctx context.Context, in []flights.FlightInput) ([]domain.Flight, error)
}

type Job struct {
	airports AirportLister
	flights  FlightCreator
	gen      *Generator
	perRun   int
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewJob(airports AirportLister, creator FlightCreator, gen *Generator, perRun int, log logrus.FieldLogger) *Job {
	return &Job{
		airports: airports,
		flights:  creator,
		gen:      gen,
		perRun:   perRun,
		log:      log,
		now:      time.Now,
	}
}

// Run generates one batch and stores it. It returns the number of flights created.
func (j *Job) Run(ctx context.Context) (int, error) {
	created, err := j.run(ctx)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.IngestRuns.WithLabelValues("ok").Inc()
	metrics.FlightsIngested.Add(float64(created))
	return created, nil
}

func (j *Job) run(ctx context.Context) (int, error) {
	if j.perRun == 0 {
		return 0, nil
	}

	airports, err := j.airports.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list airports: %w", err)
	}

	inputs, err := j.gen.Generate(airports, j.perRun, j.now())
	if err != nil {
		return 0, err
	}

	created, err := j.flights.CreateBatch(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("store generated flights: %w", err)
	}
	return len(created), nil
}

// Schedule registers the job on c. Each run gets its own timeout derived from ctx.
func (j *Job) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()

		start := time.Now()
		created, err := j.Run(runCtx)
		if err != nil {
			j.log.WithError(err).Error("mock ingestion failed")
			return
		}
		j.log.WithFields(logrus.Fields{
			"created":  created,
			"duration": time.Since(start),
		}).Info("mock ingestion finished")
	})
}

// NewScheduler returns a UTC cron that skips overlapping runs and recovers panics.
func NewScheduler(log logrus.FieldLogger) *cron.Cron {
	logger := cron.PrintfLogger(log)
	return cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}
