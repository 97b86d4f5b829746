package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/cache"
	"github.com/Domenick1991/flightsearch/internal/kafka"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/Domenick1991/flightsearch/internal/service/airports"
	"github.com/Domenick1991/flightsearch/internal/service/auth"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Services holds the infrastructure clients and use cases shared by the binaries.
type Services struct {
	Pool     *pgxpool.Pool
	Cache    *cache.RedisCache
	Producer *kafka.Producer

	AirportRepo repository.AirportRepository

	Flights  *flights.FlightService
	Airports *airports.AirportService
	Auth     *auth.AuthService
}

// NewServices connects to Postgres, Redis and Kafka and builds the use cases.
// Close must be called when the caller is done.
func NewServices(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Services, error) {
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(cfg.Database.MigrateURL(), repository.MigrateUp); err != nil {
			return nil, err
		}
		log.Info("database schema is up to date")
	}

	pool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Cache.FlightsTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.SearchTTLSeconds)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)

	airportRepo := repository.NewAirportRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())

	return &Services{
		Pool:        pool,
		Cache:       redisCache,
		Producer:    producer,
		AirportRepo: airportRepo,
		Flights: flights.NewFlightService(
			flightRepo, airportRepo, redisCache, producer, cfg.Kafka.FlightEventsTopic, log,
		),
		Airports: airports.NewAirportService(airportRepo, redisCache, log),
		Auth:     auth.NewAuthService(userRepo, tokens, log),
	}, nil
}

func (s *Services) Close(log logrus.FieldLogger) {
	if err := s.Producer.Close(); err != nil {
		log.WithError(err).Warn("close kafka producer")
	}
	if err := s.Cache.Close(); err != nil {
		log.WithError(err).Warn("close redis")
	}
	s.Pool.Close()
}
