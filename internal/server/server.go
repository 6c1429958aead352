// Package server exposes the configuration store over HTTP and a websocket
// notification channel.
package server

import (
	"github.com/groblegark/confstore/internal/hub"
	"github.com/groblegark/confstore/internal/service"
)

// Server holds the HTTP and websocket surface of confstore.
type Server struct {
	svc *service.Service
	hub *hub.Hub
}

// New returns a Server backed by the given service. The hub carries the live
// notification sessions; the notification dispatcher shares the same instance.
func New(svc *service.Service, h *hub.Hub) *Server {
	return &Server{svc: svc, hub: h}
}
