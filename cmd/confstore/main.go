package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/client"
	"github.com/groblegark/confstore/internal/ui"
)

var (
	serverURL  string
	authToken  string
	userID     string
	jsonOutput bool

	apiClient client.Client
)

func defaultServer() string {
	if s := os.Getenv("CONFSTORE_SERVER"); s != "" {
		return s
	}
	if s := activeRemoteURL(); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if t := os.Getenv("CONFSTORE_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

func defaultUserID() string {
	if u := os.Getenv("CONFSTORE_USER_ID"); u != "" {
		return u
	}
	return activeRemoteUserID()
}

var rootCmd = &cobra.Command{
	Use:   "confstore",
	Short: "CLI client for the confstore configuration service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		apiClient = client.NewHTTPClient(serverURL, authToken, userID)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if apiClient != nil {
			apiClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authenticated servers")
	rootCmd.PersistentFlags().StringVar(&userID, "user", defaultUserID(), "user ID (UUID) sent as caller identity")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
