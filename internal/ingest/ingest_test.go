package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var airports = []domain.Airport{
	{ID: 1, Code: "IST", City: "Istanbul"},
	{ID: 2, Code: "ESB", City: "Ankara"},
	{ID: 3, Code: "AYT", City: "Antalya"},
}

func TestGenerator_Generate(t *testing.T) {
	now := time.Date(2026, 10, 17, 13, 45, 0, 0, time.UTC)
	gen := NewSeededGenerator(42)

	inputs, err := gen.Generate(airports, 200, now)

	require.NoError(t, err)
	require.Len(t, inputs, 200)
	for _, in := range inputs {
		assert.NotEqual(t, in.DepartureAirportID, in.ArrivalAirportID)
		assert.True(t, in.DepartureTime.After(now), "departure %s", in.DepartureTime)
		assert.True(t, in.DepartureTime.Before(now.AddDate(0, 0, maxDaysAhead+1)))
		assert.Zero(t, in.DepartureTime.Sub(in.DepartureTime.Truncate(grid)))

		d := in.ArrivalTime.Sub(in.DepartureTime)
		assert.GreaterOrEqual(t, d, minDuration)
		assert.LessOrEqual(t, d, maxDuration)

		assert.GreaterOrEqual(t, in.PriceCents, int64(minPrice-100))
		assert.LessOrEqual(t, in.PriceCents, int64(maxPrice))
		assert.Zero(t, in.PriceCents%100)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	a, err := NewSeededGenerator(7).Generate(airports, 5, now)
	require.NoError(t, err)
	b, err := NewSeededGenerator(7).Generate(airports, 5, now)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerator_NotEnoughAirports(t *testing.T) {
	_, err := NewGenerator().Generate(airports[:1], 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotEnoughAirports)
}

type MockAirportLister struct {
	mock.Mock
}

func (m *MockAirportLister) List(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

type MockFlightCreator struct {
	mock.Mock
}

func (m *MockFlightCreator) CreateBatch(ctx context.Context, in []flights.FlightInput) ([]domain.Flight, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func TestJob_Run(t *testing.T) {
	logger, _ := test.NewNullLogger()
	lister := &MockAirportLister{}
	creator := &MockFlightCreator{}
	job := NewJob(lister, creator, NewSeededGenerator(1), 5, logger)
	ctx := context.Background()

	lister.On("List", ctx).Return(airports, nil).Once()
	creator.On("CreateBatch", ctx, mock.MatchedBy(func(in []flights.FlightInput) bool { return len(in) == 5 })).
		Return(make([]domain.Flight, 5), nil).Once()

	created, err := job.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, created)
	lister.AssertExpectations(t)
	creator.AssertExpectations(t)
}

func TestJob_Run_Errors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	t.Run("not enough airports", func(t *testing.T) {
		lister := &MockAirportLister{}
		creator := &MockFlightCreator{}
		lister.On("List", ctx).Return(airports[:1], nil).Once()

		_, err := NewJob(lister, creator, NewSeededGenerator(1), 5, logger).Run(ctx)

		assert.ErrorIs(t, err, domain.ErrNotEnoughAirports)
		creator.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		lister := &MockAirportLister{}
		creator := &MockFlightCreator{}
		lister.On("List", ctx).Return(airports, nil).Once()
		creator.On("CreateBatch", ctx, mock.Anything).Return(nil, errors.New("tx aborted")).Once()

		_, err := NewJob(lister, creator, NewSeededGenerator(1), 5, logger).Run(ctx)

		assert.ErrorContains(t, err, "store generated flights")
	})

	t.Run("disabled", func(t *testing.T) {
		created, err := NewJob(&MockAirportLister{}, &MockFlightCreator{}, NewSeededGenerator(1), 0, logger).Run(ctx)
		assert.NoError(t, err)
		assert.Zero(t, created)
	})
}

func TestJob_Schedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	job := NewJob(&MockAirportLister{}, &MockFlightCreator{}, NewGenerator(), 5, logger)
	c := NewScheduler(logger)

	id, err := job.Schedule(context.Background(), c, "0 0 * * *")
	require.NoError(t, err)

	entry := c.Entry(id)
	require.True(t, entry.Valid())
	next := entry.Schedule.Next(time.Date(2026, 10, 17, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), next)

	_, err = job.Schedule(context.Background(), c, "not a cron")
	assert.Error(t, err)
}
