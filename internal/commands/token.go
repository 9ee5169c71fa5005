package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gastos/internal/middleware/auth"
)

func newTokenCommand(e env) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a bearer token for the read API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if cfg.APIJWTSecret == "" {
				return errors.New("API_JWT_SECRET is not set")
			}
			token, err := auth.IssueToken(cfg.APIJWTSecret, args[0], ttl, e.now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")

	return cmd
}
