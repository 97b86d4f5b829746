package flights_service_api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Create(ctx context.Context, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*domain.Flight), args.Error(1)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id int64, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

type stubAuthenticator map[string]*security.Principal

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*security.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, domain.Detailed(domain.ErrUnauthenticated, "invalid or expired token")
}

var flight = &domain.Flight{
	ID:               4,
	DepartureAirport: domain.Airport{ID: 1, Code: "IST", City: "Istanbul"},
	ArrivalAirport:   domain.Airport{ID: 5, Code: "AYT", City: "Antalya"},
	DepartureTime:    time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC),
	ArrivalTime:      time.Date(2026, 10, 20, 9, 15, 0, 0, time.UTC),
	PriceCents:       9900,
}

func startServer(t *testing.T, svc flights.FlightUseCase) *grpc.ClientConn {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return startServerWithLogger(t, svc, logger)
}

func startServerWithLogger(t *testing.T, svc flights.FlightUseCase, logger logrus.FieldLogger) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger),
		AuthInterceptor(stubAuthenticator{
			"good": {ID: 7, Username: "alice", Authorities: []string{security.AuthorityUser}},
			"bare": {ID: 8, Username: "ghost"},
		}),
	))
	RegisterFlightsServiceServer(srv, NewServer(svc))
	healthpb.RegisterHealthServer(srv, health.NewServer())

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServer_GetFlight(t *testing.T) {
	svc := &MockFlightUseCase{}
	client := newTestClient(startServer(t, svc))

	svc.On("GetByID", mock.Anything, int64(4)).Return(flight, nil)

	out, err := client.GetFlight(withToken("good"), 4)

	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, float64(4), m["id"])
	assert.Equal(t, float64(75), m["duration_minutes"])
	assert.Equal(t, "2026-10-20T08:00:00Z", m["departure_time"])
	assert.Equal(t, "AYT", m["arrival_airport"].(map[string]any)["code"])
}

func TestServer_GetFlight_NotFound(t *testing.T) {
	svc := &MockFlightUseCase{}
	client := newTestClient(startServer(t, svc))

	svc.On("GetByID", mock.Anything, int64(9)).
		Return(nil, domain.Detailed(domain.ErrFlightNotFound, "the flight is not found by the id: 9"))

	_, err := client.GetFlight(withToken("good"), 9)

	st := status.Convert(err)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "the flight is not found by the id: 9", st.Message())
}

func TestServer_InternalErrorIsLoggedAndMasked(t *testing.T) {
	svc := &MockFlightUseCase{}
	logger, hook := test.NewNullLogger()
	client := newTestClient(startServerWithLogger(t, svc, logger))

	svc.On("List", mock.Anything).Return(([]domain.Flight)(nil), errors.New("pool exhausted"))

	_, err := client.ListFlights(withToken("good"))

	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal server error", st.Message())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, MethodListFlights, entry.Data["method"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "pool exhausted")
}

func TestServer_ListFlights(t *testing.T) {
	svc := &MockFlightUseCase{}
	client := newTestClient(startServer(t, svc))

	svc.On("List", mock.MatchedBy(func(ctx context.Context) bool {
		p, ok := security.PrincipalFrom(ctx)
		return ok && p.Username == "alice"
	})).Return([]domain.Flight{*flight, *flight}, nil)

	out, err := client.ListFlights(withToken("good"))

	require.NoError(t, err)
	assert.Len(t, out.AsMap()["flights"], 2)
}

func TestServer_SearchFlights(t *testing.T) {
	svc := &MockFlightUseCase{}
	client := newTestClient(startServer(t, svc))

	ret := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	svc.On("Search", mock.Anything, domain.SearchQuery{
		Departure:     "IST",
		Arrival:       "AYT",
		DepartureDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		ReturnDate:    &ret,
	}).Return(&domain.SearchResult{DepartureFlights: []domain.Flight{*flight}, ReturnFlights: []domain.Flight{}}, nil)

	req, err := structpb.NewStruct(map[string]any{
		"departure":      "IST",
		"arrival":        "AYT",
		"departure_date": "2026-10-20",
		"return_date":    "2026-10-25",
	})
	require.NoError(t, err)

	out, err := client.SearchFlights(withToken("good"), req)

	require.NoError(t, err)
	m := out.AsMap()
	assert.Len(t, m["departure_flights"], 1)
	assert.Contains(t, m, "return_flights")
}

func TestServer_SearchFlights_InvalidArgument(t *testing.T) {
	client := newTestClient(startServer(t, &MockFlightUseCase{}))

	req, err := structpb.NewStruct(map[string]any{"departure": "IST", "arrival": "AYT", "departure_date": "tomorrow"})
	require.NoError(t, err)

	_, err = client.SearchFlights(withToken("good"), req)

	st := status.Convert(err)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	assert.Equal(t, "departure_date", br.GetFieldViolations()[0].GetField())
}

func TestAuthInterceptor(t *testing.T) {
	conn := startServer(t, &MockFlightUseCase{})
	client := newTestClient(conn)

	_, err := client.ListFlights(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.ListFlights(withToken("forged"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.ListFlights(withToken("bare"))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
