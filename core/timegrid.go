package core

import (
	"fmt"
	"time"
)

// TimeGrid is the shared, evenly spaced set of sample times for one sweep.
type TimeGrid struct {
	Epoch time.Time
	Step  time.Duration
	Times []time.Time
}

// NewTimeGrid builds ceil(duration/step) timestamps starting at epoch.
func NewTimeGrid(epoch time.Time, duration, step time.Duration) (TimeGrid, error) {
	if duration <= 0 {
		return TimeGrid{}, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidSweepConfig, duration)
	}
	if step <= 0 {
		return TimeGrid{}, fmt.Errorf("%w: step must be positive, got %s", ErrInvalidSweepConfig, step)
	}

	n := int(duration / step)
	if duration%step != 0 {
		n++
	}
	times := make([]time.Time, n)
	for i := range times {
		times[i] = epoch.Add(time.Duration(i) * step)
	}
	return TimeGrid{Epoch: epoch, Step: step, Times: times}, nil
}

// Len returns the number of samples.
func (g TimeGrid) Len() int { return len(g.Times) }

// At returns the timestamp at index i.
func (g TimeGrid) At(i int) time.Time { return g.Times[i] }
