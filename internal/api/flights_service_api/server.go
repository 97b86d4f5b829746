package flights_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server implements FlightsServiceServer on top of the flight use cases. It returns
// plain domain errors; LoggingInterceptor turns them into gRPC statuses.
type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) ListFlights(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]any{"flights": flightList(list)})
}

func (s *Server) GetFlight(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, domain.NewValidationError("id", "must be a positive integer")
	}
	flight, err := s.flights.GetByID(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return newStruct(flightMap(flight))
}

// SearchFlights reads departure, arrival, departure_date and optional return_date string fields.
func (s *Server) SearchFlights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := searchQuery(req)
	if err != nil {
		return nil, err
	}

	result, err := s.flights.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"departure_flights": flightList(result.DepartureFlights)}
	if result.ReturnFlights != nil {
		out["return_flights"] = flightList(result.ReturnFlights)
	}
	return newStruct(out)
}

func searchQuery(req *structpb.Struct) (domain.SearchQuery, error) {
	fields := req.GetFields()
	str := func(name string) string { return fields[name].GetStringValue() }

	q := domain.SearchQuery{Departure: str("departure"), Arrival: str("arrival")}
	v := &domain.ValidationError{}

	if raw := str("departure_date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			v.Add("departure_date", "must be a date formatted as YYYY-MM-DD")
		}
		q.DepartureDate = d
	}
	if raw := str("return_date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			v.Add("return_date", "must be a date formatted as YYYY-MM-DD")
		} else {
			q.ReturnDate = &d
		}
	}
	return q, v.Err()
}

func flightList(list []domain.Flight) []any {
	out := make([]any, 0, len(list))
	for i := range list {
		out = append(out, flightMap(&list[i]))
	}
	return out
}

func flightMap(f *domain.Flight) map[string]any {
	return map[string]any{
		"id":                f.ID,
		"departure_airport": airportMap(f.DepartureAirport),
		"arrival_airport":   airportMap(f.ArrivalAirport),
		"departure_time":    f.DepartureTime.UTC().Format(time.RFC3339),
		"arrival_time":      f.ArrivalTime.UTC().Format(time.RFC3339),
		"duration_minutes":  int64(f.Duration() / time.Minute),
		"price_cents":       f.PriceCents,
	}
}

func airportMap(a domain.Airport) map[string]any {
	return map[string]any{
		"id":   a.ID,
		"code": a.Code,
		"city": a.City,
		"name": a.Name,
	}
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ FlightsServiceServer = (*Server)(nil)
