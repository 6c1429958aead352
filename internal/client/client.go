// Package client provides a transport-agnostic interface for the confstore
// service and an HTTP/JSON implementation that talks to the confstore REST API.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/groblegark/confstore/internal/events"
	"github.com/groblegark/confstore/internal/model"
)

// Client is the interface CLI commands use to communicate with the confstore
// server. It is implemented by HTTPClient.
type Client interface {
	// Configurations
	CreateConfiguration(ctx context.Context, req *CreateConfigurationRequest) (*model.Configuration, error)
	GetConfiguration(ctx context.Context, id string) (*model.Configuration, error)
	ListConfigurations(ctx context.Context, req *ListConfigurationsRequest) (*ListConfigurationsResponse, error)
	UpdateConfiguration(ctx context.Context, id string, req *UpdateConfigurationRequest) (*model.Configuration, error)
	RestoreVersion(ctx context.Context, id string, versionNumber int) (*model.Configuration, error)
	ListVersions(ctx context.Context, id string, req *ListVersionsRequest) (*ListVersionsResponse, error)

	// Subscriptions
	Subscribe(ctx context.Context, eventTypes []model.EventType) (*model.Subscription, error)
	Unsubscribe(ctx context.Context) error

	// Watch opens the live notification channel. Notifications arrive on the
	// returned channel until ctx is cancelled or the connection drops, at
	// which point the channel is closed.
	Watch(ctx context.Context) (<-chan *events.ConfigurationChanged, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateConfigurationRequest is the body for creating a configuration.
type CreateConfigurationRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// UpdateConfigurationRequest is the body for updating a configuration.
// UpdatedAt, when set, is the concurrency token from the caller's last read.
type UpdateConfigurationRequest struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ListConfigurationsRequest carries the list filters and pagination.
type ListConfigurationsRequest struct {
	Name        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// ListConfigurationsResponse is one page of configurations.
type ListConfigurationsResponse struct {
	Configurations []*model.Configuration `json:"configurations"`
	PageInfo       model.PageInfo         `json:"page_info"`
}

// ListVersionsRequest carries the version-list filters and pagination.
type ListVersionsRequest struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// ListVersionsResponse is one page of a configuration's version history.
type ListVersionsResponse struct {
	Versions []*model.ConfigurationVersion `json:"versions"`
	PageInfo model.PageInfo                `json:"page_info"`
}
