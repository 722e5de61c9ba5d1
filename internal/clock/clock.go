package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the reference instant for day counting and charge-day
// resolution. Injected everywhere instead of time.Now so batch jobs and fee
// calculations stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by wall time in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
