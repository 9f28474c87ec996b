package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserRegisterCommand(rootOpts))
	cmd.AddCommand(newUserLoginCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	cmd.AddCommand(newUserRolesCommand(rootOpts))
	return cmd
}

func newUserRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a standard account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				return report(cmd, a.auth.Register(ctx, email, password, name))
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	for _, f := range []string{"email", "password", "name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newUserLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				if err := report(cmd, a.auth.Login(ctx, email, password)); err != nil {
					return err
				}
				s := a.auth.CurrentSession()
				fmt.Fprintf(cmd.OutOrStdout(), "token: %s (expires %s)\n", s.Token, s.ExpiresAt.Format("2006-01-02 15:04:05"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "EMAIL\tNAME\tROLE")
				for _, u := range a.auth.ListUsers(ctx) {
					role := ""
					if u.Role != nil {
						role = u.Role.Name
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.Email, u.Name, role)
				}
				return w.Flush()
			})
		},
	}
}

func newUserRolesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, true, func(a *app) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME")
				for _, r := range a.auth.ListRoles(ctx) {
					fmt.Fprintf(w, "%d\t%s\n", r.ID, r.Name)
				}
				return w.Flush()
			})
		},
	}
}
