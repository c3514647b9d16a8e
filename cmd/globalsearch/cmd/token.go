package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	chiTransport "github.com/ravi-m-fleetenable/global-search/internal/transport/chi"
)

func newTokenCmd(opts *globalOptions) *cobra.Command {
	var (
		roleName string
		userID   string
		driverID string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a caller token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is empty")
			}
			r, err := role.Parse(roleName)
			if err != nil {
				return fmt.Errorf("--role: %w", err)
			}

			tok, err := chiTransport.SignToken(caller.New(userID, r, driverID), cfg.Auth.JWTSecret,
				time.Now().Add(ttl).Unix())
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err //nolint:wrapcheck // terminal output
		},
	}

	cmd.Flags().StringVar(&roleName, "role", string(role.Admin), "Caller role")
	cmd.Flags().StringVar(&userID, "user", "", "Caller user id (token subject)")
	cmd.Flags().StringVar(&driverID, "driver-id", "", "Linked driver id (driver role)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
