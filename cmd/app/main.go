package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsearch/api"
	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/bootstrap"
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

	router := api.NewRouter(api.RouterDeps{
		Log:        log,
		Auth:       api.NewAuthHandler(svc.Auth),
		Flights:    api.NewFlightHandler(svc.Flights),
		Airports:   api.NewAirportHandler(svc.Airports),
		Authn:      svc.Auth,
		SwaggerDir: cfg.HTTP.SwaggerDir,
		Checks: map[string]api.HealthCheck{
			"postgres": svc.Pool.Ping,
			"redis":    svc.Cache.Ping,
		},
	})

	if err := bootstrap.Run(ctx, cfg, log, router, svc.Flights, svc.Auth); err != nil {
		log.WithError(err).Error("server error")
	}
}
