package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/ui"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the confstore service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := apiClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]string{"status": status})
		} else {
			rendered := ui.RenderWarn(status)
			if status == "ok" {
				rendered = ui.RenderOK(status)
			}
			fmt.Printf("Health: %s\n", rendered)
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}
