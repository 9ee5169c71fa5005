// Package commands implements the gastosctl command tree.
package commands

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type env struct {
	loadConfig func() (*config.Config, error)
	now        func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(env{loadConfig: cli.LoadConfig, now: time.Now})
}

func newRootCommand(e env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gastosctl",
		Short:   "Manage the gastos expense bot",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMessageCommand(e))
	rootCmd.AddCommand(newMigrateCommand(e))
	rootCmd.AddCommand(newTokenCommand(e))

	return rootCmd
}

// stderrLogger keeps diagnostics off stdout so replies and tokens can be piped.
func stderrLogger(w io.Writer, level string) *log.Logger {
	return log.NewText(w, cli.ParseLevel(level), log.ComponentCLI)
}
