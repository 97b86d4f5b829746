package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/audit"
	"github.com/Domenick1991/flightsearch/internal/bootstrap"
	"github.com/Domenick1991/flightsearch/internal/ingest"
	"github.com/Domenick1991/flightsearch/internal/kafka"
	"github.com/Domenick1991/flightsearch/internal/logging"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found")
	}

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.NewServices(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init services")
	}
	defer svc.Close(log)

	if err := svc.Producer.CheckConnection(ctx); err != nil {
		log.WithError(err).Warn("kafka is unreachable, flight events will be dropped")
	}

	job := ingest.NewJob(svc.AirportRepo, svc.Flights, ingest.NewGenerator(), cfg.Ingest.FlightsPerRun, log)
	scheduler := ingest.NewScheduler(log)
	if _, err := job.Schedule(ctx, scheduler, cfg.Ingest.Schedule); err != nil {
		log.WithError(err).Fatal("schedule mock ingestion")
	}
	scheduler.Start()
	log.WithField("schedule", cfg.Ingest.Schedule).Info("mock ingestion scheduled")

	if cfg.Ingest.RunOnStart {
		if created, err := job.Run(ctx); err != nil {
			log.WithError(err).Error("initial mock ingestion failed")
		} else {
			log.WithField("created", created).Info("initial mock ingestion finished")
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.FlightEventsTopic, log)
		defer consumer.Close()

		recorder := audit.NewRecorder(log)
		go func() {
			if err := consumer.Consume(ctx, recorder.HandleMessage); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("flight event consumer stopped")
			}
		}()
	} else {
		log.Warn("no kafka brokers configured, flight event audit is disabled")
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	<-scheduler.Stop().Done()
}
