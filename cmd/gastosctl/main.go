package main

import (
	"os"

	"gastos/internal/cli"
	"gastos/internal/commands"
)

func main() {
	cli.LoadEnvFile()
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
