package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/confstore/internal/events"
	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live change notifications",
	Long: `Stream change notifications for your configurations over a websocket.
Only events matching your subscription are delivered; run 'confstore
subscribe' first. Interrupt (Ctrl-C) to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if !jsonOutput {
			fmt.Fprintln(os.Stderr, "watching for changes (Ctrl-C to stop)")
		}

		if natsURL, _ := cmd.Flags().GetString("nats"); natsURL != "" {
			return watchNATS(ctx, natsURL)
		}

		ch, err := apiClient.Watch(ctx)
		if err != nil {
			return fmt.Errorf("opening notification stream: %w", err)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case n, ok := <-ch:
				if !ok {
					// Server closed the stream.
					return nil
				}
				printNotification(n)
			}
		}
	},
}

// watchNATS consumes change events straight from the bus instead of the
// websocket endpoint. Bus events carry every user's changes, so they are
// filtered down to the caller's own configurations.
func watchNATS(ctx context.Context, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("confstore.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-ch:
			if !ok {
				return nil
			}
			var n events.ConfigurationChanged
			if err := json.Unmarshal(payload, &n); err != nil {
				fmt.Fprintf(os.Stderr, "Error decoding event: %v\n", err)
				continue
			}
			if n.Configuration == nil || n.Configuration.UserID != userID {
				continue
			}
			printNotification(&n)
		}
	}
}

func init() {
	watchCmd.Flags().String("nats", "", "consume events from this NATS URL instead of the server websocket")
}

func printNotification(n *events.ConfigurationChanged) {
	if jsonOutput {
		data, err := json.Marshal(n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	label := string(n.EventType)
	switch n.EventType {
	case model.EventCreated:
		label = ui.RenderOK(label)
	case model.EventRestored:
		label = ui.RenderWarn(label)
	default:
		label = ui.RenderAccent(label)
	}

	fmt.Printf("%s  %s  %s  %s  %s\n",
		ui.RenderMuted(time.Now().Format("15:04:05")),
		label,
		n.Configuration.ID,
		n.Configuration.Name,
		compactData(n.Configuration.Data),
	)
}
