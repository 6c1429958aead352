package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/client"
)

// parseTimeFlag parses an RFC 3339 timestamp flag, returning nil when unset.
func parseTimeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected RFC 3339 timestamp: %w", name, err)
	}
	return &t, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		createdFrom, err := parseTimeFlag(cmd, "created-from")
		if err != nil {
			return err
		}
		createdTo, err := parseTimeFlag(cmd, "created-to")
		if err != nil {
			return err
		}

		resp, err := apiClient.ListConfigurations(context.Background(), &client.ListConfigurationsRequest{
			Name:        name,
			CreatedFrom: createdFrom,
			CreatedTo:   createdTo,
			Page:        page,
			PageSize:    pageSize,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printConfigurationListTable(resp.Configurations, resp.PageInfo.TotalItems)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("name", "", "filter by partial name match")
	listCmd.Flags().String("created-from", "", "only configurations created at or after this RFC 3339 time")
	listCmd.Flags().String("created-to", "", "only configurations created at or before this RFC 3339 time")
	listCmd.Flags().Int("page", 0, "page number (1-based)")
	listCmd.Flags().Int("page-size", 0, "items per page")
}
