package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"gastos/internal/backend"
	"gastos/internal/log"
	"gastos/internal/storage"
)

func newMigrateCommand(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			logger := stderrLogger(cmd.ErrOrStderr(), cfg.LogLevel)

			var dialect storage.Dialect
			var dsn string
			switch backend.BackendType(cfg.DataBackend) {
			case backend.SQLiteBackend:
				dialect, dsn = storage.DialectSQLite, cfg.SQLiteDBPath
			case backend.PostgresBackend:
				dialect, dsn = storage.DialectPostgres, cfg.DatabaseURL
			default:
				return fmt.Errorf("backend %q has no schema to migrate", cfg.DataBackend)
			}

			if err := storage.RunMigrations(dialect, dsn); err != nil {
				return err
			}
			logger.Info("Migrations applied", log.FieldOperation, log.OpMigrate, "dialect", string(dialect))
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", dialect)
			return nil
		},
	}
}
