package service

import (
	"context"
	"fmt"

	"github.com/groblegark/confstore/internal/idgen"
	"github.com/groblegark/confstore/internal/model"
)

// Subscribe registers the user for change notifications, replacing any
// existing subscription. An empty event-type set subscribes to every event.
func (s *Service) Subscribe(ctx context.Context, userID string, eventTypes []model.EventType) (*model.Subscription, error) {
	for _, t := range eventTypes {
		if !t.IsValid() {
			return nil, ValidationError(fmt.Sprintf("unknown event type %q", t))
		}
	}

	id, err := idgen.Generate(idgen.SubscriptionPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate subscription id: %w", err)
	}

	sub := &model.Subscription{
		ID:         id,
		UserID:     userID,
		EventTypes: eventTypes,
	}
	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes the user's subscription. Returns ErrNotFound when the
// user has none.
func (s *Service) Unsubscribe(ctx context.Context, userID string) error {
	n, err := s.store.DeleteSubscriptions(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: no subscription for user", ErrNotFound)
	}
	return nil
}
