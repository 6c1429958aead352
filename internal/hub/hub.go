// Package hub tracks the live notification sessions of each user and fans
// notification payloads out to them.
//
// A user may hold any number of concurrent sessions (several CLI watchers,
// several browser tabs); the hub groups them by user ID so a notification
// addressed to a user reaches every session at once. Delivery is best-effort:
// a session whose buffer is full has the message dropped rather than blocking
// the sender.
package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// sessionBufferSize is the per-session delivery buffer. A session that falls
// this far behind starts losing messages.
const sessionBufferSize = 16

// Session is one live connection belonging to a user.
type Session struct {
	id     uint64
	userID string
	ch     chan []byte
}

// UserID returns the identity the session was registered under.
func (s *Session) UserID() string { return s.userID }

// Receive returns the channel on which the session's messages arrive.
// The channel is closed when the session is unregistered.
func (s *Session) Receive() <-chan []byte { return s.ch }

// Hub groups live sessions by user.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
	nextID   atomic.Uint64
}

func New() *Hub {
	return &Hub{
		sessions: make(map[string]map[*Session]struct{}),
	}
}

// Register adds a session for the user and returns it. Call Unregister when
// the connection ends.
func (h *Hub) Register(userID string) *Session {
	s := &Session{
		id:     h.nextID.Add(1),
		userID: userID,
		ch:     make(chan []byte, sessionBufferSize),
	}
	h.mu.Lock()
	group, ok := h.sessions[userID]
	if !ok {
		group = make(map[*Session]struct{})
		h.sessions[userID] = group
	}
	group[s] = struct{}{}
	h.mu.Unlock()

	slog.Debug("session registered", "user_id", userID, "session_id", s.id)
	return s
}

// Unregister removes a session and closes its channel. Safe to call more than
// once.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	group, ok := h.sessions[s.userID]
	if ok {
		if _, live := group[s]; live {
			delete(group, s)
			close(s.ch)
		}
		if len(group) == 0 {
			delete(h.sessions, s.userID)
		}
	}
	h.mu.Unlock()

	slog.Debug("session unregistered", "user_id", s.userID, "session_id", s.id)
}

// SessionCount returns how many live sessions the user has.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Send delivers payload to every live session of every listed user and
// reports how many sessions accepted it. Slow sessions are skipped.
func (h *Hub) Send(userIDs []string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, userID := range userIDs {
		for s := range h.sessions[userID] {
			select {
			case s.ch <- payload:
				delivered++
			default:
				// Drop if the session is slow — prevents blocking the dispatcher.
				slog.Warn("dropping notification for slow session", "user_id", userID, "session_id", s.id)
			}
		}
	}
	return delivered
}
