package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/smarthome-core/internal/automation"
)

// NewAutomationCommand creates the automation command group.
func NewAutomationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Manage automations",
	}
	cmd.AddCommand(newAutomationListCommand(rootOpts))
	cmd.AddCommand(newAutomationCreateCommand(rootOpts))
	cmd.AddCommand(newAutomationTransitionCommand(rootOpts, "activate", true))
	cmd.AddCommand(newAutomationTransitionCommand(rootOpts, "deactivate", false))
	cmd.AddCommand(newAutomationSummaryCommand(rootOpts))
	return cmd
}

func newAutomationListCommand(rootOpts *RootOptions) *cobra.Command {
	var homeID int64
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List automations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if activeOnly && homeID <= 0 {
				return errors.New("--active requires --home")
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				var list []automation.Automation
				switch {
				case activeOnly:
					list = a.automations.ListActive(ctx, homeID)
				case homeID > 0:
					list = a.automations.ListByHome(ctx, homeID)
				default:
					list = a.automations.List(ctx)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tHOME")
				for i := range list {
					au := &list[i]
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", au.ID, au.Name, au.Status(), au.Home.Name)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&homeID, "home", 0, "only automations of this home")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active automations (requires --home)")
	return cmd
}

func newAutomationCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		in       automation.CreateInput
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if inactive {
				active := false
				in.Active = &active
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return report(cmd, a.automations.Create(rootOpts.actorContext(ctx), in))
			})
		},
	}
	cmd.Flags().Int64Var(&in.HomeID, "home", 0, "home ID")
	cmd.Flags().StringVar(&in.Description, "description", "", "what the automation does (10 to 500 characters)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the automation inactive")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

// newAutomationTransitionCommand builds activate (active true) or
// deactivate.
func newAutomationTransitionCommand(rootOpts *RootOptions, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <automation-id>",
		Short: fmt.Sprintf("Mark an automation %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "automation id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return report(cmd, a.automations.SetActive(rootOpts.actorContext(ctx), id, active))
			})
		},
	}
}

func newAutomationSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <home-id>",
		Short: "Count a home's automations by status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			homeID, err := parseID(args[0], "home id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(a.automations.Summary(ctx, homeID))
			})
		},
	}
}
