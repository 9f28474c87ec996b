package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/smarthome-core/internal/event"
	"github.com/nerrad567/smarthome-core/internal/outcome"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnv names the environment variable that overrides --config.
const configEnv = "SMARTHOME_CONFIG"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Actor      string
}

// NewRootCommand creates the root command for the smarthome CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "smarthome",
		Short:         "SmartHome Core - household device management",
		Long:          "Manage homes, devices, automations and users stored in SQLite or Postgres.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $"+configEnv+" or "+defaultConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.Actor, "as", "", "email of the user recorded events are attributed to")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHomeCommand(opts))
	cmd.AddCommand(NewLocationCommand(opts))
	cmd.AddCommand(NewDeviceCommand(opts))
	cmd.AddCommand(NewAutomationCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

// configPath resolves the config file: flag, then environment, then default.
func (o *RootOptions) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// actorContext attributes recorded events to --as when set.
func (o *RootOptions) actorContext(ctx context.Context) context.Context {
	if o.Actor == "" {
		return ctx
	}
	return event.WithActor(ctx, o.Actor)
}

// report prints a successful outcome, or turns a failed one into the
// command's error.
func report(cmd *cobra.Command, o outcome.Outcome) error {
	if !o.OK {
		return fmt.Errorf("%s: %w", o.Message, o.Err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), o.String())
	return nil
}
