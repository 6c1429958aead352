package model

import "time"

// Subscription is a user's notification subscription. A user has at most one
// live subscription; Subscribe replaces the event-type set in place.
type Subscription struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	EventTypes []EventType `json:"event_types"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Matches reports whether the subscription covers the given event type.
// An empty event-type set subscribes to everything.
func (s *Subscription) Matches(t EventType) bool {
	if len(s.EventTypes) == 0 {
		return true
	}
	for _, et := range s.EventTypes {
		if et == t {
			return true
		}
	}
	return false
}
