// Package clock provides the injected time source used by all time-window
// and recurrence computations.
package clock

import "time"

// Clock is the single source of "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, in UTC.
func System() Clock { return systemClock{} }
