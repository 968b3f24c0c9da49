package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"self-healing-kernel/internal/console"
	"self-healing-kernel/internal/subsystem"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Validate the config and print the initial subsystem table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			registry := subsystem.NewRegistry(cfg.Subsystems)
			console.WriteStatus(cmd.OutOrStdout(), registry.Snapshot(), !color.NoColor)
			return nil
		},
	}
}
