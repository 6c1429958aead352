package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a configuration and its version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := apiClient.GetConfiguration(context.Background(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(cfg)
			return nil
		}

		printConfigurationTable(cfg)
		if len(cfg.Versions) > 0 {
			fmt.Println()
			printVersionListTable(cfg.Versions, len(cfg.Versions))
		}
		return nil
	},
}
