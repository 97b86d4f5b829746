package cli

import (
	"fmt"
	"strconv"

	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/service/airports"
	"github.com/spf13/cobra"
)

func newMigrateCmd(env *Env, outputFn outputFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	for _, dir := range []repository.MigrateDirection{repository.MigrateUp, repository.MigrateDown} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Run all %s migrations", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := env.LoadConfig()
				if err != nil {
					return err
				}
				if err := env.Migrate(cfg.Database.MigrateURL(), dir); err != nil {
					return err
				}
				outputFn(cmd).Success(fmt.Sprintf("migrate %s: done", dir))
				return nil
			},
		})
	}
	return cmd
}

func newIngestCmd(env *Env, outputFn outputFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Generate one batch of mock flights now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := env.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			created, err := b.Ingest.Run(cmd.Context())
			if err != nil {
				return err
			}
			outputFn(cmd).Print(
				[]string{"CREATED"},
				[][]string{{strconv.Itoa(created)}},
				map[string]int{"created": created},
			)
			return nil
		},
	}
}

func newUserCmd(env *Env, outputFn outputFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var password string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := env.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			p, err := b.Users.Register(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			outputFn(cmd).Print(
				[]string{"ID", "USERNAME"},
				[][]string{{strconv.FormatInt(p.ID, 10), p.Username}},
				map[string]any{"id": p.ID, "username": p.Username},
			)
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "Account password (at least 8 characters)")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}

func newAirportCmd(env *Env, outputFn outputFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airport",
		Short: "Manage airports",
	}

	add := &cobra.Command{
		Use:   "add CODE CITY [NAME]",
		Short: "Create an airport",
		Long:  `Create an airport. NAME defaults to "<CITY> Airport".`,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := airports.AirportInput{Code: args[0], City: args[1], Name: args[1] + " Airport"}
			if len(args) == 3 {
				in.Name = args[2]
			}

			b, err := env.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			a, err := b.Airports.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			outputFn(cmd).Print(
				[]string{"ID", "CODE", "CITY", "NAME"},
				[][]string{{strconv.FormatInt(a.ID, 10), a.Code, a.City, a.Name}},
				map[string]any{"id": a.ID, "code": a.Code, "city": a.City, "name": a.Name},
			)
			return nil
		},
	}

	cmd.AddCommand(add)
	return cmd
}
