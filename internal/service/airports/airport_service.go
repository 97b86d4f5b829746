package airports

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/sirupsen/logrus"
)

type AirportUseCase interface {
	Create(ctx context.Context, in AirportInput) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	Update(ctx context.Context, id int64, in AirportInput) (*domain.Airport, error)
	Delete(ctx context.Context, id int64) error
}

type AirportInput struct {
	Code string
	City string
	Name string
}

// Invalidator drops cached flights, which embed airport data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var codePattern = regexp.MustCompile(`^[A-Z]{3,4}$`)

// Column limits of the airports table, counted in characters.
const (
	MaxCityLength = 100
	MaxNameLength = 256
)

type AirportService struct {
	repo  repository.AirportRepository
	cache Invalidator
	log   logrus.FieldLogger
}

func NewAirportService(repo repository.AirportRepository, cache Invalidator, log logrus.FieldLogger) *AirportService {
	return &AirportService{repo: repo, cache: cache, log: log}
}

func (s *AirportService) Create(ctx context.Context, in AirportInput) (*domain.Airport, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}

	airport := &domain.Airport{Code: in.Code, City: in.City, Name: in.Name}
	if err := s.repo.Create(ctx, airport); err != nil {
		return nil, s.mapErr(err, 0, in.Code)
	}
	return airport, nil
}

func (s *AirportService) List(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.List(ctx)
}

func (s *AirportService) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	airport, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, id, "")
	}
	return airport, nil
}

func (s *AirportService) Update(ctx context.Context, id int64, in AirportInput) (*domain.Airport, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}

	airport := &domain.Airport{ID: id, Code: in.Code, City: in.City, Name: in.Name}
	if err := s.repo.Update(ctx, airport); err != nil {
		return nil, s.mapErr(err, id, in.Code)
	}

	s.invalidate(ctx)
	return airport, nil
}

func (s *AirportService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, id, "")
	}
	s.invalidate(ctx)
	return nil
}

func (s *AirportService) mapErr(err error, id int64, code string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.Detailed(domain.ErrAirportNotFound, "the airport is not found by the id: %d", id)
	case errors.Is(err, domain.ErrAirportExists):
		return domain.Detailed(domain.ErrAirportExists, "airport code %s already exists", code)
	case errors.Is(err, domain.ErrAirportInUse):
		return domain.Detailed(domain.ErrAirportInUse, "the airport %d is used by flights", id)
	}
	return err
}

func (s *AirportService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("invalidate flight cache")
	}
}

func normalize(in AirportInput) AirportInput {
	return AirportInput{
		Code: strings.ToUpper(strings.TrimSpace(in.Code)),
		City: strings.TrimSpace(in.City),
		Name: strings.TrimSpace(in.Name),
	}
}

func validate(in AirportInput) error {
	v := &domain.ValidationError{}
	if !codePattern.MatchString(in.Code) {
		v.Add("code", "must be 3 or 4 latin letters")
	}
	switch n := utf8.RuneCountInString(in.City); {
	case n == 0:
		v.Add("city", "is required")
	case n > MaxCityLength:
		v.Add("city", fmt.Sprintf("must be at most %d characters", MaxCityLength))
	}
	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		v.Add("name", "is required")
	case n > MaxNameLength:
		v.Add("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return v.Err()
}

var _ AirportUseCase = (*AirportService)(nil)
