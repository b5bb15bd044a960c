package sse

import (
	"context"
	"encoding/json"

	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
)

// Broadcaster publishes model events to the hub as JSON SSE messages
type Broadcaster struct {
	hub    *Hub
	logger *logger.Logger
}

var _ events.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: log.WithStr("component", "sse-broadcaster"),
	}
}

// EventName is the SSE event name for a change, e.g. "station-update"
func EventName(event model.Event) string {
	return string(event.Entity) + "-" + string(event.Kind)
}

// Publish implements events.Publisher
func (b *Broadcaster) Publish(_ context.Context, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error().Err(err).
			Str("entity", string(event.Entity)).
			Msg("sse failed to encode event")
		return
	}
	b.hub.BroadcastEvent(EventName(event), string(data))
}
