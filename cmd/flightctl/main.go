package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/bootstrap"
	"github.com/Domenick1991/flightsearch/internal/cli"
	"github.com/Domenick1991/flightsearch/internal/ingest"
	"github.com/Domenick1991/flightsearch/internal/logging"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/joho/godotenv"
)

// version is set with -ldflags at build time.
var version = "dev"

func main() {
	_ = godotenv.Load()

	env := &cli.Env{
		LoadConfig: func() (*config.Config, error) {
			return config.LoadConfig(config.Path())
		},
		Migrate: repository.Migrate,
		Connect: func(ctx context.Context, cfg *config.Config) (*cli.Backend, error) {
			log := logging.New(cfg.Log)
			svc, err := bootstrap.NewServices(ctx, cfg, log)
			if err != nil {
				return nil, err
			}
			return &cli.Backend{
				Ingest:   ingest.NewJob(svc.AirportRepo, svc.Flights, ingest.NewGenerator(), cfg.Ingest.FlightsPerRun, log),
				Users:    svc.Auth,
				Airports: svc.Airports,
				Close:    func() { svc.Close(log) },
			}, nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(env, version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
