package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/groblegark/confstore/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version            string    `json:"version"`
	Type               string    `json:"type"`
	Timestamp          time.Time `json:"timestamp"`
	ConfigurationCount int       `json:"configuration_count"`
	SubscriptionCount  int       `json:"subscription_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes every configuration (with its full version history) and
// every subscription from the store as JSONL to w. Configurations are ordered
// by ID so successive exports of identical state are byte-identical.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	configs, err := s.ListAllConfigurations(ctx)
	if err != nil {
		return fmt.Errorf("list configurations: %w", err)
	}

	// Populate version history for each configuration.
	for i, c := range configs {
		full, err := s.GetConfigurationWithVersions(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("get versions for %s: %w", c.ID, err)
		}
		configs[i] = full
	}

	subs, err := s.ListAllSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:            "1",
		Type:               "header",
		Timestamp:          time.Now().UTC(),
		ConfigurationCount: len(configs),
		SubscriptionCount:  len(subs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, c := range configs {
		if err := enc.Encode(record{Type: "configuration", Data: c}); err != nil {
			return fmt.Errorf("encode configuration %s: %w", c.ID, err)
		}
	}

	for _, sub := range subs {
		if err := enc.Encode(record{Type: "subscription", Data: sub}); err != nil {
			return fmt.Errorf("encode subscription %s: %w", sub.ID, err)
		}
	}

	return nil
}
