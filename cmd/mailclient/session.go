package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailclient/internal/api"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in user",
	Long: `Ask the server who the stored session belongs to.

Exits with an error when no session is stored or the server rejects it;
a rejected session is cleared locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessions.Authenticated() {
			return errors.New("not signed in")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.Timeout())
		defer cancel()

		user, err := client.Session(ctx)
		if api.IsUnauthorized(err) {
			return errors.New("session expired, sign in again")
		}
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		if err := sessions.SetUser(user); err != nil {
			log.Warn("storing user profile", zap.Error(err))
		}

		fmt.Printf("%s (%s)\n", user.Username, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessions.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.Timeout())
		defer cancel()

		// The local session is cleared whatever the server says.
		if err := client.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
			log.Warn("logout request failed", zap.Error(err))
		}
		if err := sessions.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}

		fmt.Println("Signed out.")
		return nil
	},
}
