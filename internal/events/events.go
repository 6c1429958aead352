// Package events defines the change-event topics published to the message bus
// and the Publisher interface used to emit them.
package events

import (
	"context"

	"github.com/groblegark/confstore/internal/model"
)

// Event topic constants
const (
	TopicConfigurationCreated  = "confstore.configuration.created"
	TopicConfigurationModified = "confstore.configuration.modified"
	TopicConfigurationRestored = "confstore.configuration.restored"
)

// TopicFor maps an event type onto its bus topic.
func TopicFor(t model.EventType) string {
	switch t {
	case model.EventCreated:
		return TopicConfigurationCreated
	case model.EventModified:
		return TopicConfigurationModified
	case model.EventRestored:
		return TopicConfigurationRestored
	}
	return ""
}

// ConfigurationChanged is the payload published for every configuration
// mutation. Configuration carries the post-mutation state with its version
// history, newest first.
type ConfigurationChanged struct {
	EventType     model.EventType      `json:"event_type"`
	Configuration *model.Configuration `json:"configuration"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
