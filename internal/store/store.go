package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/groblegark/confstore/internal/model"
)

// ErrDuplicateName is returned by CreateConfiguration when another live
// configuration already holds the same (owner, lower(name)) pair.
var ErrDuplicateName = errors.New("duplicate configuration name")

// Store defines the persistence interface for confstore.
// Missing rows are reported as sql.ErrNoRows.
type Store interface {
	// Configurations
	CreateConfiguration(ctx context.Context, c *model.Configuration) error
	GetConfiguration(ctx context.Context, id string) (*model.Configuration, error)
	GetConfigurationWithVersions(ctx context.Context, id string) (*model.Configuration, error)
	ConfigurationNameExists(ctx context.Context, userID, name string) (bool, error)
	ListConfigurations(ctx context.Context, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error)
	// UpdateConfiguration overwrites name and data in place, guarded by the
	// concurrency token: the write applies only while updated_at still equals
	// token. Returns the new updated_at, or sql.ErrNoRows when the row is
	// gone or the token is stale.
	UpdateConfiguration(ctx context.Context, id, name string, data json.RawMessage, token time.Time) (time.Time, error)

	// Versions
	MaxVersionNumber(ctx context.Context, configurationID string) (int, error) // 0 when no versions exist
	InsertVersion(ctx context.Context, v *model.ConfigurationVersion) error
	GetVersion(ctx context.Context, configurationID string, versionNumber int) (*model.ConfigurationVersion, error)
	ListVersions(ctx context.Context, configurationID string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error)

	// Export (backup) reads, unscoped by owner
	ListAllConfigurations(ctx context.Context) ([]*model.Configuration, error)
	ListAllSubscriptions(ctx context.Context) ([]*model.Subscription, error)

	// Subscriptions
	GetSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	UpsertSubscription(ctx context.Context, s *model.Subscription) error
	DeleteSubscriptions(ctx context.Context, userID string) (int, error) // returns rows removed
	MatchSubscribers(ctx context.Context, t model.EventType) ([]string, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
