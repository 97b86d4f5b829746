package api

import (
	"context"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/Domenick1991/flightsearch/internal/service/airports"
	"github.com/Domenick1991/flightsearch/internal/service/auth"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Create(ctx context.Context, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, in)
	return flightOrNil(args)
}

func (m *MockFlightUseCase) CreateBatch(ctx context.Context, in []flights.FlightInput) ([]domain.Flight, error) {
	args := m.Called(ctx, in)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	return flightOrNil(args)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id int64, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, id, in)
	return flightOrNil(args)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	return flightOrNil(args)
}

func (m *MockFlightUseCase) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

func flightOrNil(args mock.Arguments) (*domain.Flight, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockAirportUseCase struct {
	mock.Mock
}

func (m *MockAirportUseCase) Create(ctx context.Context, in airports.AirportInput) (*domain.Airport, error) {
	args := m.Called(ctx, in)
	return airportOrNil(args)
}

func (m *MockAirportUseCase) List(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func (m *MockAirportUseCase) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	args := m.Called(ctx, id)
	return airportOrNil(args)
}

func (m *MockAirportUseCase) Update(ctx context.Context, id int64, in airports.AirportInput) (*domain.Airport, error) {
	args := m.Called(ctx, id, in)
	return airportOrNil(args)
}

func (m *MockAirportUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func airportOrNil(args mock.Arguments) (*domain.Airport, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, username, password string) (*security.Principal, error) {
	args := m.Called(ctx, username, password)
	return principalOrNil(args)
}

func (m *MockAuthUseCase) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthUseCase) LoadPrincipal(ctx context.Context, username string) (*security.Principal, error) {
	args := m.Called(ctx, username)
	return principalOrNil(args)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, token string) (*security.Principal, error) {
	args := m.Called(ctx, token)
	return principalOrNil(args)
}

func principalOrNil(args mock.Arguments) (*security.Principal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Principal), args.Error(1)
}
