package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/client"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a configuration, snapshotting the previous state",
	Long: `Update a configuration's name and/or data. The previous state is kept
as a new version in the history.

Unless --updated-at is given, the current state is fetched first and its
updated_at is sent as the concurrency token, so a write that raced in
between fails with a conflict instead of being silently overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		ctx := context.Background()

		name, _ := cmd.Flags().GetString("name")
		tokenRaw, _ := cmd.Flags().GetString("updated-at")

		data, err := readData(cmd)
		if err != nil {
			return err
		}

		var token *time.Time
		if tokenRaw != "" {
			t, err := time.Parse(time.RFC3339Nano, tokenRaw)
			if err != nil {
				return fmt.Errorf("--updated-at: expected RFC 3339 timestamp: %w", err)
			}
			token = &t
		}

		// Read-modify-write: keep the current name when none is given, and use
		// the fetched updated_at as the token when the caller didn't supply one.
		if name == "" || token == nil {
			current, err := apiClient.GetConfiguration(ctx, id)
			if err != nil {
				return err
			}
			if name == "" {
				name = current.Name
			}
			if token == nil {
				token = &current.UpdatedAt
			}
		}

		cfg, err := apiClient.UpdateConfiguration(ctx, id, &client.UpdateConfigurationRequest{
			Name:      name,
			Data:      data,
			UpdatedAt: token,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(cfg)
		} else {
			printConfigurationTable(cfg)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("name", "", "new name (defaults to the current name)")
	updateCmd.Flags().StringP("data", "d", "", "new document as an inline JSON string")
	updateCmd.Flags().StringP("file", "f", "", "path to a JSON file ('-' reads stdin)")
	updateCmd.Flags().String("updated-at", "", "concurrency token from a previous read (RFC 3339)")
}
