package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/confstore/internal/model"
)

// subscribeInput is the body of POST /v1/subscriptions. An empty or absent
// event_types list subscribes to every event.
type subscribeInput struct {
	EventTypes []model.EventType `json:"event_types"`
}

// handleSubscribe handles POST /v1/subscriptions.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, userID string) {
	var in subscribeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := s.svc.Subscribe(r.Context(), userID, in.EventTypes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleUnsubscribe handles DELETE /v1/subscriptions.
func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.svc.Unsubscribe(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
