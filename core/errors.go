package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSweepConfig is returned for a non-positive threshold,
	// duration or step.
	ErrInvalidSweepConfig = errors.New("invalid sweep config")
	// ErrTrackLength is returned when a track does not cover the shared grid.
	ErrTrackLength = errors.New("track length does not match time grid")
	// ErrPropagation marks a per-object sampling failure.
	ErrPropagation = errors.New("propagation failed")
	// ErrInvalidElements is returned for element sets the propagator cannot parse.
	ErrInvalidElements = errors.New("invalid element set")
)

// PropagationError describes why an object could not be sampled.
type PropagationError struct {
	Object string
	Time   time.Time
	Err    error
}

func (e *PropagationError) Error() string {
	if e.Time.IsZero() {
		return fmt.Sprintf("propagate %q: %v", e.Object, e.Err)
	}
	return fmt.Sprintf("propagate %q at %s: %v", e.Object, e.Time.UTC().Format(time.RFC3339), e.Err)
}

// Unwrap exposes the cause; errors.Is(err, ErrPropagation) also matches.
func (e *PropagationError) Unwrap() []error { return []error{ErrPropagation, e.Err} }
