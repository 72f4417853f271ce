// Package clock provides the wall-clock implementation of secondary.Clock.
package clock

import (
	"time"

	"github.com/example/nextaction/internal/ports/secondary"
)

// SystemClock implements secondary.Clock with the wall clock.
type SystemClock struct{}

// Now returns the current instant in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ secondary.Clock = SystemClock{}
