package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "kernel",
		Short: "Self-healing kernel simulator",
		Long: `kernel simulates a small set of kernel subsystems that crash, heal and restart.

Run without a subcommand for the interactive console (manual and automatic
modes). Every state change is audited to a size-rotated log file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (defaults are used when empty)")

	rootCmd.AddCommand(
		newServeCommand(),
		newStatusCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
