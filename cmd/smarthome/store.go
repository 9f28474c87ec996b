package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/validation"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply every pending schema migration for the configured driver.

With --down, roll back the most recent migration instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, false, func(a *app) error {
				out := cmd.OutOrStdout()
				if down {
					version, err := a.db.MigrateDown(ctx)
					if err != nil {
						return fmt.Errorf("rolling back migration: %w", err)
					}
					if version == "" {
						fmt.Fprintln(out, "no migrations to roll back")
						return nil
					}
					fmt.Fprintf(out, "rolled back %s\n", version)
					return nil
				}

				if err := a.db.Migrate(ctx); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				a.log.Component("database").Info("database migrations complete", "driver", a.db.Driver())
				fmt.Fprintln(out, "migrations applied")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	cmd.AddCommand(newMigrateStatusCommand(rootOpts))

	return cmd
}

func newMigrateStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, false, func(a *app) error {
				applied, pending, err := a.db.MigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("reading migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, r := range applied {
					fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"))
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
				}
				return nil
			})
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var admin auth.AdminSeed

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default roles, states and device types",
		Long: `Create the default roles, states and device types that are missing.

Running it again changes nothing. With --admin-email and --admin-password an
administrator account is created as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if admin.Email != "" {
				if r := validation.Registration(admin.Email, admin.Password, admin.Name); !r.Valid {
					return r.Err()
				}
			}

			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				roles, err := auth.SeedRoles(ctx, a.roles)
				if err != nil {
					return err
				}
				catalog, err := device.SeedCatalog(ctx, a.states, a.types)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "seeded %d roles, %d states and device types\n", roles, catalog)

				if admin.Email == "" {
					return nil
				}
				created, err := auth.SeedAdmin(ctx, a.users, a.roles, a.verifier, admin)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(out, "created admin %s\n", admin.Email)
				} else {
					fmt.Fprintf(out, "admin %s already exists\n", admin.Email)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&admin.Email, "admin-email", "", "email of the administrator to create")
	cmd.Flags().StringVar(&admin.Password, "admin-password", "", "password of the administrator")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "Administrator", "display name of the administrator")

	return cmd
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Print the tables and their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, false, func(a *app) error {
				counts, err := a.db.CountRows(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d tables\n", len(counts))
				for _, c := range counts {
					fmt.Fprintf(out, "  %-12s %d\n", c.Table, c.Rows)
				}
				return nil
			})
		},
	}
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <table>",
		Short: "Print every row of a table as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, false, func(a *app) error {
				records, err := a.db.Dump(ctx, args[0])
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(records); err != nil {
					return fmt.Errorf("encoding %s: %w", args[0], err)
				}
				return enc.Close()
			})
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the database and the enabled backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				results := a.healthCheck(ctx)
				names := make([]string, 0, len(results))
				for name := range results {
					names = append(names, name)
				}
				sort.Strings(names)

				out := cmd.OutOrStdout()
				failed := 0
				for _, name := range names {
					if err := results[name]; err != nil {
						failed++
						fmt.Fprintf(out, "%-9s down: %v\n", name, err)
						continue
					}
					fmt.Fprintf(out, "%-9s ok\n", name)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d checks failed", failed, len(names))
				}
				return nil
			})
		},
	}
}
