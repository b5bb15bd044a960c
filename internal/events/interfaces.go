package events

//go:generate mockgen -source=interfaces.go -destination=../mock/publisher_mock.go -package=mock

import (
	"context"

	"github.com/mcoot/lanterngame/internal/model"
)

// Publisher fans a change out to connected clients. Delivery is best effort;
// Publish never fails the operation that produced the change.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}
