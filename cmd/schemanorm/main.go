package main

import (
	"os"

	"github.com/robbyt/geminischema/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()
	rootCmd.AddCommand(commands.NormalizeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
