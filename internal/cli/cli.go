// Package cli implements flightctl, the operator tool for schema migrations,
// one-off mock ingestion and account and airport seeding.
package cli

import (
	"context"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/Domenick1991/flightsearch/internal/service/airports"
	"github.com/spf13/cobra"
)

type Migrator func(databaseURL string, direction repository.MigrateDirection) error

type Ingester interface {
	Run(ctx context.Context) (int, error)
}

type Registrar interface {
	Register(ctx context.Context, username, password string) (*security.Principal, error)
}

type AirportCreator interface {
	Create(ctx context.Context, in airports.AirportInput) (*domain.Airport, error)
}

// Backend is the set of use cases the commands drive. Close releases its connections.
type Backend struct {
	Ingest   Ingester
	Users    Registrar
	Airports AirportCreator
	Close    func()
}

// Env carries the factories the commands resolve lazily, so that --help and
// argument errors never touch the database.
type Env struct {
	LoadConfig func() (*config.Config, error)
	Migrate    Migrator
	Connect    func(ctx context.Context, cfg *config.Config) (*Backend, error)
}

func NewRootCmd(env *Env, version string) *cobra.Command {
	var jsonOutput bool

	root := &cobra.Command{
		Use:           "flightctl",
		Short:         "flightsearch operator tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func(cmd *cobra.Command) *Output {
		return NewOutput(jsonOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root.AddCommand(
		newMigrateCmd(env, outputFn),
		newIngestCmd(env, outputFn),
		newUserCmd(env, outputFn),
		newAirportCmd(env, outputFn),
	)
	return root
}

type outputFactory func(cmd *cobra.Command) *Output

func (e *Env) backend(ctx context.Context) (*Backend, error) {
	cfg, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}
	return e.Connect(ctx, cfg)
}
