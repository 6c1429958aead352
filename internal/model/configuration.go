package model

import (
	"encoding/json"
	"time"
)

// EventType classifies a configuration change for notification matching.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventRestored EventType = "restored"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks whether the event type is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case EventCreated, EventModified, EventRestored:
		return true
	}
	return false
}

// Configuration is a named JSON blob owned by a single user.
// Its name is unique per owner, case-insensitively.
type Configuration struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Versions is relational data, populated only by queries that ask for it.
	// Ordered newest-first (version_number descending).
	Versions []*ConfigurationVersion `json:"versions,omitempty"`
}

// ConfigurationVersion is an immutable snapshot of a configuration's name and
// data as they were immediately before the mutation that created it.
// Version numbers are contiguous per configuration, starting at 1.
type ConfigurationVersion struct {
	ID              string          `json:"id"`
	ConfigurationID string          `json:"configuration_id"`
	VersionNumber   int             `json:"version_number"`
	Name            string          `json:"name"`
	Data            json.RawMessage `json:"data"`
	CreatedAt       time.Time       `json:"created_at"`
}
