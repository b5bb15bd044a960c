package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/sse"
)

// EventHandler streams game change events over SSE
type EventHandler struct {
	hub *sse.Hub
}

// NewEventHandler creates a new event handler
func NewEventHandler(hub *sse.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

// Stream handles GET /api/v1/events. Authentication is optional; the player
// ID only labels the connection.
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	subscriber := "anonymous-" + uuid.NewString()[:8]
	if player := middleware.Player(r.Context()); player != nil {
		subscriber = string(player.ID)
	}
	sse.ServeSSE(w, r, h.hub, subscriber)
}
