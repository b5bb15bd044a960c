package credentials

//go:generate mockgen -source=interfaces.go -destination=../../mock/mixer_mock.go -package=mock

import (
	"context"

	"github.com/mcoot/lanterngame/internal/model"
)

// Mixer assembles the credential set offered by a new hack session: exactly
// one entry flagged correct plus decoys, in an order that does not leak which
// entry is real.
type Mixer interface {
	Assemble(ctx context.Context, stationID model.StationID) ([]model.GameUserEntry, error)
}
