package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/groblegark/confstore/internal/service"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/configurations", s.withIdentity(s.handleCreateConfiguration))
	mux.HandleFunc("GET /v1/configurations", s.withIdentity(s.handleListConfigurations))
	mux.HandleFunc("GET /v1/configurations/{id}", s.withIdentity(s.handleGetConfiguration))
	mux.HandleFunc("PUT /v1/configurations/{id}", s.withIdentity(s.handleUpdateConfiguration))
	mux.HandleFunc("POST /v1/configurations/{id}/versions/{version}/restore", s.withIdentity(s.handleRestoreVersion))
	mux.HandleFunc("GET /v1/configurations/{id}/versions", s.withIdentity(s.handleListVersions))
	mux.HandleFunc("POST /v1/subscriptions", s.withIdentity(s.handleSubscribe))
	mux.HandleFunc("DELETE /v1/subscriptions", s.withIdentity(s.handleUnsubscribe))
	mux.HandleFunc("GET /v1/notifications/ws", s.withIdentity(s.handleNotificationsWS))
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
