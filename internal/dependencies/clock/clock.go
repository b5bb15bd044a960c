// Package clock is the time source for round windows, session resolution and
// mission completion stamps.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC at microsecond precision, so a
// stamp survives a round trip through a Postgres TIMESTAMPTZ unchanged
type RealClock struct{}

// New returns the system clock
func New() *RealClock {
	return &RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
