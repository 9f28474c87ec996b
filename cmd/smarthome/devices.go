package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/location"
	"github.com/nerrad567/smarthome-core/internal/outcome"
	"github.com/nerrad567/smarthome-core/internal/validation"
)

// parseID parses a positional ID argument.
func parseID(arg, field string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %q", field, arg)
	}
	if r := validation.PositiveID(id, field); !r.Valid {
		return 0, r.Err()
	}
	return id, nil
}

// NewHomeCommand creates the home command group.
func NewHomeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Manage homes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List homes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				homes, err := a.homes.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME")
				for _, h := range homes {
					fmt.Fprintf(w, "%d\t%s\n", h.ID, h.Name)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a home",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if r := validation.Name(name, "home name"); !r.Valid {
				return r.Err()
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				h := &location.Home{Name: name}
				if err := a.homes.Insert(ctx, h); err != nil {
					return err
				}
				return report(cmd, outcome.Successf("Home '%s' created (%d)", h.Name, h.ID))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add-member <home-id> <email>",
		Short: "Give a user access to a home",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			homeID, err := parseID(args[0], "home id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				if err := a.homes.AddMember(ctx, homeID, args[1]); err != nil {
					return err
				}
				return report(cmd, outcome.Successf("%s added to home %d", args[1], homeID))
			})
		},
	})

	return cmd
}

// NewLocationCommand creates the location command group.
func NewLocationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage the locations of a home",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <home-id>",
		Short: "List the locations of a home",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			homeID, err := parseID(args[0], "home id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				locs, err := a.locations.ListByHome(ctx, homeID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME")
				for _, l := range locs {
					fmt.Fprintf(w, "%d\t%s\n", l.ID, l.Name)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <home-id> <name>",
		Short: "Create a location in a home",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			homeID, err := parseID(args[0], "home id")
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if r := validation.Name(name, "location name"); !r.Valid {
				return r.Err()
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				home, err := a.homes.GetByID(ctx, homeID)
				if err != nil {
					return err
				}
				loc := &location.Location{Name: name, Home: home}
				if err := a.locations.Insert(ctx, loc); err != nil {
					return err
				}
				return report(cmd, outcome.Successf("Location '%s' created (%d)", loc.Name, loc.ID))
			})
		},
	})

	return cmd
}

// NewDeviceCommand creates the device command group.
func NewDeviceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage devices",
	}
	cmd.AddCommand(newDeviceListCommand(rootOpts))
	cmd.AddCommand(newDeviceCreateCommand(rootOpts))
	cmd.AddCommand(newDeviceSetStateCommand(rootOpts))
	return cmd
}

func newDeviceListCommand(rootOpts *RootOptions) *cobra.Command {
	var homeID int64
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if search != "" && homeID <= 0 {
				return errors.New("--search requires --home")
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				var devices []device.Device
				switch {
				case search != "":
					devices = a.devices.Search(ctx, search, homeID)
				case homeID > 0:
					devices = a.devices.ListByHome(ctx, homeID)
				default:
					devices = a.devices.List(ctx)
				}
				return printDevices(cmd, devices)
			})
		},
	}
	cmd.Flags().Int64Var(&homeID, "home", 0, "only devices of this home")
	cmd.Flags().StringVar(&search, "search", "", "only devices whose name contains this text (requires --home)")
	return cmd
}

func printDevices(cmd *cobra.Command, devices []device.Device) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATE\tLOCATION\tHOME")
	for i := range devices {
		d := &devices[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Type.Name, d.StateName(), d.Location.Name, d.Home.Name)
	}
	return w.Flush()
}

func newDeviceCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var in device.CreateInput

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return report(cmd, a.devices.Create(rootOpts.actorContext(ctx), in))
			})
		},
	}
	cmd.Flags().Int64Var(&in.HomeID, "home", 0, "home ID")
	cmd.Flags().Int64Var(&in.TypeID, "type", 0, "device type ID")
	cmd.Flags().Int64Var(&in.LocationID, "location", 0, "location ID")
	cmd.Flags().Int64Var(&in.StateID, "state", 2, "initial state ID")
	for _, name := range []string{"home", "type", "location"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDeviceSetStateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-state <device-id> <state-id>",
		Short: "Change the state of a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "device id")
			if err != nil {
				return err
			}
			stateID, err := parseID(args[1], "state id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return report(cmd, a.devices.ChangeState(rootOpts.actorContext(ctx), id, stateID))
			})
		},
	}
}
