package flights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	Create(ctx context.Context, in FlightInput) (*domain.Flight, error)
	CreateBatch(ctx context.Context, in []FlightInput) ([]domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Update(ctx context.Context, id int64, in FlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
}

// FlightInput is the writable part of a flight, used by create and update.
type FlightInput struct {
	DepartureAirportID int64
	ArrivalAirportID   int64
	DepartureTime      time.Time
	ArrivalTime        time.Time
	PriceCents         int64
}

type AirportGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
}

// FlightCache lookups return the cache version they read; writes must pass it back.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, int64, error)
	SetFlights(ctx context.Context, version int64, flights []domain.Flight) error
	GetSearch(ctx context.Context, key string) (*domain.SearchResult, int64, error)
	SetSearch(ctx context.Context, version int64, key string, result *domain.SearchResult) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// publishTimeout bounds how long a mutation waits for the event bus.
const publishTimeout = 2 * time.Second

type FlightService struct {
	repo           repository.FlightRepository
	airports       AirportGetter
	cache          FlightCache
	publisher      EventPublisher
	topic          string
	publishTimeout time.Duration
	log            logrus.FieldLogger
}

// NewFlightService wires the service. cache and publisher may be nil.
func NewFlightService(
	repo repository.FlightRepository,
	airports AirportGetter,
	cache FlightCache,
	publisher EventPublisher,
	topic string,
	log logrus.FieldLogger,
) *FlightService {
	return &FlightService{
		repo:           repo,
		airports:       airports,
		cache:          cache,
		publisher:      publisher,
		topic:          topic,
		publishTimeout: publishTimeout,
		log:            log,
	}
}

func (s *FlightService) Create(ctx context.Context, in FlightInput) (*domain.Flight, error) {
	dep, depErr := s.airport(ctx, in.DepartureAirportID)
	arr, arrErr := s.airport(ctx, in.ArrivalAirportID)
	if depErr != nil || arrErr != nil {
		if err := firstUnexpected(depErr, arrErr); err != nil {
			return nil, err
		}
		return nil, domain.Detailed(domain.ErrAirportNotFound, "departure or arrival airport not found")
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	flight := newFlight(in, *dep, *arr)
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}

	s.invalidate(ctx)
	s.publish(ctx, domain.FlightEventCreated, flight)
	return flight, nil
}

// CreateBatch stores all inputs in one transaction or none of them.
func (s *FlightService) CreateBatch(ctx context.Context, in []FlightInput) ([]domain.Flight, error) {
	if len(in) == 0 {
		return []domain.Flight{}, nil
	}

	airports := make(map[int64]*domain.Airport)
	lookup := func(id int64) (*domain.Airport, error) {
		if a, ok := airports[id]; ok {
			return a, nil
		}
		a, err := s.airport(ctx, id)
		if err != nil {
			return nil, err
		}
		airports[id] = a
		return a, nil
	}

	batch := make([]*domain.Flight, 0, len(in))
	for i, item := range in {
		dep, depErr := lookup(item.DepartureAirportID)
		arr, arrErr := lookup(item.ArrivalAirportID)
		if depErr != nil || arrErr != nil {
			if err := firstUnexpected(depErr, arrErr); err != nil {
				return nil, err
			}
			return nil, domain.Detailed(domain.ErrAirportNotFound, "flight %d: departure or arrival airport not found", i)
		}
		if err := validateInput(item); err != nil {
			return nil, fmt.Errorf("flight %d: %w", i, err)
		}
		batch = append(batch, newFlight(item, *dep, *arr))
	}

	if err := s.repo.CreateMany(ctx, batch); err != nil {
		return nil, fmt.Errorf("create flights: %w", err)
	}

	created := make([]domain.Flight, 0, len(batch))
	ids := make([]int64, 0, len(batch))
	for _, f := range batch {
		created = append(created, *f)
		ids = append(ids, f.ID)
	}

	s.invalidate(ctx)
	s.emit(ctx, strconv.FormatInt(ids[0], 10), domain.FlightEvent{
		Type:      domain.FlightEventIngested,
		FlightIDs: ids,
	})
	return created, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	cacheable := false
	var version int64
	if s.cache != nil {
		cached, v, err := s.cache.GetFlights(ctx)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("read flights from cache")
		case cached != nil:
			return cached, nil
		default:
			cacheable, version = true, v
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetFlights(ctx, version, flights); err != nil {
			s.log.WithError(err).Warn("write flights to cache")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Detailed(domain.ErrFlightNotFound, "the flight is not found by the id: %d", id)
	}
	return flight, err
}

// Update checks the flight first, then the arrival airport, then the departure airport.
func (s *FlightService) Update(ctx context.Context, id int64, in FlightInput) (*domain.Flight, error) {
	flight, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	arr, err := s.airport(ctx, in.ArrivalAirportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Detailed(domain.ErrAirportNotFound, "the arrival airport is not found by the id: %d", in.ArrivalAirportID)
	}
	if err != nil {
		return nil, err
	}

	dep, err := s.airport(ctx, in.DepartureAirportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Detailed(domain.ErrAirportNotFound, "the departure airport is not found by the id: %d", in.DepartureAirportID)
	}
	if err != nil {
		return nil, err
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	flight.DepartureAirport = *dep
	flight.ArrivalAirport = *arr
	flight.DepartureTime = in.DepartureTime.UTC()
	flight.ArrivalTime = in.ArrivalTime.UTC()
	flight.PriceCents = in.PriceCents

	if err := s.repo.Update(ctx, flight); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Detailed(domain.ErrFlightNotFound, "the flight is not found by the id: %d", id)
		}
		return nil, fmt.Errorf("update flight: %w", err)
	}

	s.invalidate(ctx)
	s.publish(ctx, domain.FlightEventUpdated, flight)
	return flight, nil
}

// Delete removes the flight and returns it as it was before deletion.
func (s *FlightService) Delete(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Detailed(domain.ErrFlightNotFound, "the flight to delete is not found by the id: %d", id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Detailed(domain.ErrFlightNotFound, "the flight to delete is not found by the id: %d", id)
		}
		return nil, fmt.Errorf("delete flight: %w", err)
	}

	s.invalidate(ctx)
	s.publish(ctx, domain.FlightEventDeleted, flight)
	return flight, nil
}

// Search looks up flights departing on the given UTC day. With a return date the
// reverse route is searched on that day as well.
func (s *FlightService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	q.Departure = strings.ToUpper(strings.TrimSpace(q.Departure))
	q.Arrival = strings.ToUpper(strings.TrimSpace(q.Arrival))

	v := &domain.ValidationError{}
	if q.Departure == "" {
		v.Add("departure", "is required")
	}
	if q.Arrival == "" {
		v.Add("arrival", "is required")
	}
	if q.DepartureDate.IsZero() {
		v.Add("departure_date", "is required")
	}
	if q.ReturnDate != nil && !q.DepartureDate.IsZero() {
		depDay, _ := domain.DayBounds(q.DepartureDate)
		retDay, _ := domain.DayBounds(*q.ReturnDate)
		if retDay.Before(depDay) {
			v.Add("return_date", "must not be before departure_date")
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	key := searchKey(q)
	cacheable := false
	var version int64
	if s.cache != nil {
		cached, v, err := s.cache.GetSearch(ctx, key)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("read search from cache")
		case cached != nil:
			return cached, nil
		default:
			cacheable, version = true, v
		}
	}

	start, end := domain.DayBounds(q.DepartureDate)
	outbound, err := s.repo.Search(ctx, q.Departure, q.Arrival, start, end)
	if err != nil {
		return nil, fmt.Errorf("search departure flights: %w", err)
	}
	result := &domain.SearchResult{DepartureFlights: outbound}

	if q.ReturnDate != nil {
		start, end = domain.DayBounds(*q.ReturnDate)
		inbound, err := s.repo.Search(ctx, q.Arrival, q.Departure, start, end)
		if err != nil {
			return nil, fmt.Errorf("search return flights: %w", err)
		}
		result.ReturnFlights = inbound
	}

	if cacheable {
		if err := s.cache.SetSearch(ctx, version, key, result); err != nil {
			s.log.WithError(err).Warn("write search to cache")
		}
	}
	return result, nil
}

func (s *FlightService) airport(ctx context.Context, id int64) (*domain.Airport, error) {
	return s.airports.GetByID(ctx, id)
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("invalidate flight cache")
	}
}

func (s *FlightService) publish(ctx context.Context, typ domain.FlightEventType, f *domain.Flight) {
	dep := f.DepartureTime
	s.emit(ctx, strconv.FormatInt(f.ID, 10), domain.FlightEvent{
		Type:             typ,
		FlightIDs:        []int64{f.ID},
		DepartureAirport: f.DepartureAirport.Code,
		ArrivalAirport:   f.ArrivalAirport.Code,
		DepartureTime:    &dep,
		PriceCents:       f.PriceCents,
	})
}

// emit is best effort: the database is the source of truth, events only feed the audit log.
func (s *FlightService) emit(ctx context.Context, key string, event domain.FlightEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, s.topic, key, event); err != nil {
		s.log.WithError(err).WithField("event_type", event.Type).Warn("publish flight event")
	}
}

func validateInput(in FlightInput) error {
	v := &domain.ValidationError{}
	if in.DepartureAirportID == in.ArrivalAirportID {
		v.Add("arrival_airport_id", "must differ from departure_airport_id")
	}
	if in.DepartureTime.IsZero() {
		v.Add("departure_time", "is required")
	}
	if in.ArrivalTime.IsZero() {
		v.Add("arrival_time", "is required")
	}
	if !in.DepartureTime.IsZero() && !in.ArrivalTime.After(in.DepartureTime) {
		v.Add("arrival_time", "must be after departure_time")
	}
	if in.PriceCents < 0 {
		v.Add("price_cents", "must not be negative")
	}
	return v.Err()
}

func newFlight(in FlightInput, dep, arr domain.Airport) *domain.Flight {
	return &domain.Flight{
		DepartureAirport: dep,
		ArrivalAirport:   arr,
		DepartureTime:    in.DepartureTime.UTC(),
		ArrivalTime:      in.ArrivalTime.UTC(),
		PriceCents:       in.PriceCents,
	}
}

// firstUnexpected returns the first error that is not a plain not-found.
func firstUnexpected(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

func searchKey(q domain.SearchQuery) string {
	ret := "-"
	if q.ReturnDate != nil {
		ret = q.ReturnDate.UTC().Format(time.DateOnly)
	}
	return strings.Join([]string{q.Departure, q.Arrival, q.DepartureDate.UTC().Format(time.DateOnly), ret}, ":")
}

var _ FlightUseCase = (*FlightService)(nil)
