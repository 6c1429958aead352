// Package notify delivers change notifications to subscribers after a
// configuration mutation commits.
//
// Delivery is strictly best-effort: nothing here can fail or roll back the
// mutation that triggered it. Every failure is logged and swallowed, and no
// missed notification is queued for later.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/groblegark/confstore/internal/events"
	"github.com/groblegark/confstore/internal/hub"
	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

const (
	// queueSize bounds the dispatch backlog. Mutations keep committing even
	// if notifications fall behind; overflow is dropped.
	queueSize = 256

	// dispatchTimeout bounds the store reads for a single notification.
	dispatchTimeout = 10 * time.Second
)

type job struct {
	configurationID string
	eventType       model.EventType
}

// Dispatcher fans configuration-change notifications out to live sessions and
// mirrors them onto the event bus. Jobs are processed by a single worker in
// enqueue order, so per-configuration notifications arrive in commit order.
type Dispatcher struct {
	store     store.Store
	hub       *hub.Hub
	publisher events.Publisher

	queue   chan job
	done    chan struct{}
	stopped atomic.Bool
}

// New returns a started Dispatcher.
func New(s store.Store, h *hub.Hub, p events.Publisher) *Dispatcher {
	d := &Dispatcher{
		store:     s,
		hub:       h,
		publisher: p,
		queue:     make(chan job, queueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues a notification for an already-committed mutation. It never
// blocks; when the queue is full the notification is dropped and logged.
func (d *Dispatcher) Notify(configurationID string, eventType model.EventType) {
	if d.stopped.Load() {
		return
	}
	select {
	case d.queue <- job{configurationID: configurationID, eventType: eventType}:
	default:
		slog.Warn("notification queue full, dropping",
			"configuration_id", configurationID, "event_type", eventType)
	}
}

// Close stops accepting notifications, drains the queue, and waits for the
// worker to finish.
func (d *Dispatcher) Close() {
	if d.stopped.Swap(true) {
		return
	}
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		d.dispatch(j)
	}
}

// dispatch delivers one notification: reload the configuration, resolve the
// subscribers for the event type, and push the payload to each subscriber's
// live sessions.
func (d *Dispatcher) dispatch(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	c, err := d.store.GetConfigurationWithVersions(ctx, j.configurationID)
	if err != nil {
		// The configuration vanished between commit and dispatch, or the
		// store hiccupped. Either way the notification is lost by design.
		slog.Warn("skipping notification, configuration unavailable",
			"configuration_id", j.configurationID, "event_type", j.eventType, "error", err)
		return
	}

	payload := events.ConfigurationChanged{
		EventType:     j.eventType,
		Configuration: c,
	}

	if err := d.publisher.Publish(ctx, events.TopicFor(j.eventType), payload); err != nil {
		slog.Warn("failed to publish event",
			"configuration_id", c.ID, "event_type", j.eventType, "error", err)
	}

	subscribers, err := d.store.MatchSubscribers(ctx, j.eventType)
	if err != nil {
		slog.Warn("failed to match subscribers",
			"configuration_id", c.ID, "event_type", j.eventType, "error", err)
		return
	}
	if len(subscribers) == 0 {
		return
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to marshal notification",
			"configuration_id", c.ID, "event_type", j.eventType, "error", err)
		return
	}

	delivered := d.hub.Send(subscribers, msg)
	slog.Debug("notification dispatched",
		"configuration_id", c.ID, "event_type", j.eventType,
		"subscribers", len(subscribers), "sessions", delivered)
}
