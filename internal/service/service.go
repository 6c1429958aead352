// Package service implements the configuration and subscription operations on
// top of the store, independent of any transport.
package service

import (
	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

// Notifier receives change notifications after a mutation commits.
// Implementations must not block; delivery is best-effort.
type Notifier interface {
	Notify(configurationID string, eventType model.EventType)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(string, model.EventType) {}

// Service owns the business rules for configurations, versions, and
// subscriptions.
type Service struct {
	store    store.Store
	notifier Notifier
}

// New returns a Service backed by the given store. A nil notifier disables
// change notifications.
func New(s store.Store, n Notifier) *Service {
	if n == nil {
		n = NoopNotifier{}
	}
	return &Service{store: s, notifier: n}
}
