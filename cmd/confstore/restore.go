package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <id> <version>",
	Short: "Restore a configuration to an earlier version",
	Long: `Restore a configuration's name and data from a version in its history.
The pre-restore state is snapshotted as a new version first, so a restore
never loses data and can itself be undone.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		versionNumber, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: expected a number", args[1])
		}

		cfg, err := apiClient.RestoreVersion(context.Background(), id, versionNumber)
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
