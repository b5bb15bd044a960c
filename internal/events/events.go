// Package events carries entity change notifications from the game services
// to the real-time transport.
package events

import (
	"context"
	"time"

	"github.com/mcoot/lanterngame/internal/model"
)

// New builds an event for a changed entity
func New(kind model.ChangeKind, entity model.Entity, data any, at time.Time) model.Event {
	return model.Event{
		Kind:      kind,
		Entity:    entity,
		Data:      data,
		Timestamp: at,
	}
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) {}
