package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/client"
)

// readData resolves the configuration document from --data, --file, or stdin
// ("--file -"). Exactly one source must be provided.
func readData(cmd *cobra.Command) (json.RawMessage, error) {
	data, _ := cmd.Flags().GetString("data")
	file, _ := cmd.Flags().GetString("file")

	switch {
	case data != "" && file != "":
		return nil, fmt.Errorf("--data and --file are mutually exclusive")
	case data != "":
		return json.RawMessage(data), nil
	case file == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return json.RawMessage(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		return json.RawMessage(b), nil
	default:
		return nil, fmt.Errorf("a document is required: use --data or --file")
	}
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		data, err := readData(cmd)
		if err != nil {
			return err
		}

		cfg, err := apiClient.CreateConfiguration(context.Background(), &client.CreateConfigurationRequest{
			Name: name,
			Data: data,
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
	createCmd.Flags().StringP("data", "d", "", "configuration document as an inline JSON string")
	createCmd.Flags().StringP("file", "f", "", "path to a JSON file ('-' reads stdin)")
}
