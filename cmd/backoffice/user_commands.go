package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"backoffice/internal/config"
	"backoffice/internal/logging"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage back-end users",
	}
	userCmd.AddCommand(newUserAddCommand(ctx))
	return userCmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var email, displayName string
	var roles []string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create or update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				id, err := st.UpsertUser(cmd.Context(), store.User{
					Username:    username,
					DisplayName: displayName,
					Email:       email,
					Roles:       roles,
					Enabled:     !disabled,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved user %s (id %d)\n", username, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address used by the test email endpoint")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (defaults to the username)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to grant (repeatable)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the user disabled")
	return cmd
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Session token utilities",
	}
	sessionCmd.AddCommand(&cobra.Command{
		Use:   "issue USERNAME",
		Short: "Issue a session token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				user, err := st.UserByName(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("user %q not found", args[0])
				}
				if !user.Enabled {
					return errors.New("user is disabled")
				}
				// Record the login in the activity log like a browser login would.
				activity := slog.New(logging.NewActivityHandler(st, logging.ParseLevel(cfg.Logging.ActivityLevel)))
				manager := session.NewManager(cfg, st, activity)
				token, expires, err := manager.Issue(cmd.Context(), user)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, token)
				fmt.Fprintf(out, "Expires %s. Send it as \"Authorization: Bearer <token>\" or the %s cookie.\n",
					expires.Format(time.RFC3339), manager.CookieName())
				return nil
			})
		},
	})
	return sessionCmd
}
