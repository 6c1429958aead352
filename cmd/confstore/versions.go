package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/client"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <id>",
	Short: "List a configuration's version history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		resp, err := apiClient.ListVersions(context.Background(), args[0], &client.ListVersionsRequest{
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
			printVersionListTable(resp.Versions, resp.PageInfo.TotalItems)
		}
		return nil
	},
}

func init() {
	versionsCmd.Flags().String("created-from", "", "only versions created at or after this RFC 3339 time")
	versionsCmd.Flags().String("created-to", "", "only versions created at or before this RFC 3339 time")
	versionsCmd.Flags().Int("page", 0, "page number (1-based)")
	versionsCmd.Flags().Int("page-size", 0, "items per page")
}
