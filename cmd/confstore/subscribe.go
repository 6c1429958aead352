package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/model"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe [event-type...]",
	Short: "Subscribe to configuration change notifications",
	Long: `Subscribe to change notifications for your configurations. Event types
are created, modified, and restored; with no arguments the subscription
matches all of them. Subscribing again replaces the previous selection.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eventTypes := make([]model.EventType, len(args))
		for i, a := range args {
			eventTypes[i] = model.EventType(a)
		}

		sub, err := apiClient.Subscribe(context.Background(), eventTypes)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(sub)
		} else {
			printSubscriptionTable(sub)
		}
		return nil
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe",
	Short: "Remove your notification subscription",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.Unsubscribe(context.Background()); err != nil {
			return err
		}
		fmt.Println("unsubscribed")
		return nil
	},
}
