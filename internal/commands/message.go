package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gastos/internal/backend"
	"gastos/internal/ledger"
	"gastos/internal/services"
)

func newMessageCommand(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "message <phone> <text...>",
		Short: "Process one chat message against the configured ledger and print the reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			logger := stderrLogger(cmd.ErrOrStderr(), cfg.LogLevel)

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			result, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), backendCfg)
			if err != nil {
				return err
			}
			if result.Cleanup != nil {
				defer result.Cleanup()
			}

			clock := ledger.SystemClock{Location: cfg.Location()}
			processor := services.NewMessageProcessor(
				services.NewDispatcher(result.Backend, clock, logger), clock, cfg.AuthorizedPhones, logger)

			reply, err := processor.HandleMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}
