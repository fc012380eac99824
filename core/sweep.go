package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

const tracerName = "github.com/signalsfoundry/debris-tracker/core"

// SweepConfig holds the caller-supplied sweep parameters. Core applies no
// defaults; every field must be set.
type SweepConfig struct {
	Threshold float64 // km, alert when the minimum separation is strictly below
	Duration  time.Duration
	Step      time.Duration
	Epoch     time.Time // start of the look-ahead window
}

// Validate rejects configurations the sweep cannot run with.
func (c SweepConfig) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be positive, got %v", ErrInvalidSweepConfig, c.Threshold)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidSweepConfig, c.Duration)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %s", ErrInvalidSweepConfig, c.Step)
	}
	if c.Epoch.IsZero() {
		return fmt.Errorf("%w: epoch is required", ErrInvalidSweepConfig)
	}
	return nil
}

// Track is one object's positions sampled on a TimeGrid.
type Track struct {
	Object  model.SpaceObject
	Samples []Vec3
}

// SkippedObject records an object excluded from a sweep.
type SkippedObject struct {
	Object model.SpaceObject
	Reason error
}

// CloseApproach is a pair whose minimum sampled separation fell under the
// threshold. A and B are ordered by name so the event does not depend on
// input order.
type CloseApproach struct {
	A, B       model.SpaceObject
	DistanceKm float64
	Index      int // grid index of the closest sample
	Time       time.Time
}

// TimeOfDay formats the time of closest approach as HH:MM:SS UTC.
func (e CloseApproach) TimeOfDay() string {
	return e.Time.UTC().Format("15:04:05")
}

// SweepStats summarises one sweep for metrics.
type SweepStats struct {
	Objects  int
	Tracked  int
	Skipped  int
	Pairs    int
	Events   int
	Samples  int
	Duration time.Duration
}

// SweepMetricsRecorder receives stats after every sweep.
type SweepMetricsRecorder interface {
	ObserveSweep(SweepStats)
}

// SweepResult is everything one sweep produced.
type SweepResult struct {
	Grid    TimeGrid
	Events  []CloseApproach
	Skipped []SkippedObject
	Tracked int // objects that propagated on every grid sample
	Pairs   int
}

// Sweeper runs proximity sweeps against a PositionSource.
type Sweeper struct {
	source   PositionSource
	distance DistanceFunc
	log      logging.Logger
	metrics  SweepMetricsRecorder
}

// SweeperOption customises a Sweeper.
type SweeperOption func(*Sweeper)

// WithLogger sets the logger used for skip diagnostics. Without it, Run logs
// through the logger carried by its context.
func WithLogger(l logging.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the recorder that receives per-sweep stats.
func WithMetrics(m SweepMetricsRecorder) SweeperOption {
	return func(s *Sweeper) { s.metrics = m }
}

// WithDistanceFunc replaces the Euclidean distance.
func WithDistanceFunc(fn DistanceFunc) SweeperOption {
	return func(s *Sweeper) {
		if fn != nil {
			s.distance = fn
		}
	}
}

// NewSweeper constructs a Sweeper.
func NewSweeper(src PositionSource, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		source:   src,
		distance: EuclideanKm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run samples every object on the grid described by cfg and reports every
// unordered pair whose minimum separation is strictly below cfg.Threshold.
// Objects that fail to propagate are skipped and logged; they never fail
// the sweep.
func (s *Sweeper) Run(ctx context.Context, objects []model.SpaceObject, cfg SweepConfig) (SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return SweepResult{}, err
	}
	grid, err := NewTimeGrid(cfg.Epoch, cfg.Duration, cfg.Step)
	if err != nil {
		return SweepResult{}, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "core.Sweep")
	defer span.End()
	span.SetAttributes(
		attribute.Int("sweep.objects", len(objects)),
		attribute.Int("sweep.grid_len", grid.Len()),
		attribute.Float64("sweep.threshold_km", cfg.Threshold),
	)

	log := s.log
	if log == nil {
		log = logging.FromContext(ctx)
	}

	start := time.Now()
	tracks, skipped := BuildTracks(s.source, objects, grid)
	for _, sk := range skipped {
		log.Warn(ctx, "skipping object",
			logging.String("object", sk.Object.Name),
			logging.String("reason", sk.Reason.Error()),
		)
	}
	log.Debug(ctx, "tracks built",
		logging.Int("tracked", len(tracks)),
		logging.Int("skipped", len(skipped)),
		logging.Int("grid_len", grid.Len()),
		logging.String("step", cfg.Step.String()),
	)

	events, pairs, err := FindCloseApproaches(tracks, grid, cfg.Threshold, s.distance)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SweepResult{}, err
	}

	stats := SweepStats{
		Objects:  len(objects),
		Tracked:  len(tracks),
		Skipped:  len(skipped),
		Pairs:    pairs,
		Events:   len(events),
		Samples:  len(tracks) * grid.Len(),
		Duration: time.Since(start),
	}
	if s.metrics != nil {
		s.metrics.ObserveSweep(stats)
	}
	span.SetAttributes(
		attribute.Int("sweep.pairs", pairs),
		attribute.Int("sweep.events", len(events)),
		attribute.Int("sweep.skipped", len(skipped)),
	)
	log.Info(ctx, "sweep complete",
		logging.Int("objects", len(tracks)),
		logging.Float64("threshold_km", cfg.Threshold),
		logging.Int("pairs", pairs),
		logging.Int("events", len(events)),
		logging.Any("duration_ms", stats.Duration.Milliseconds()),
	)

	return SweepResult{Grid: grid, Events: events, Skipped: skipped, Tracked: len(tracks), Pairs: pairs}, nil
}

// BuildTracks samples each object at every grid time. An object is dropped
// whole on its first failed sample; surviving tracks keep input order.
func BuildTracks(src PositionSource, objects []model.SpaceObject, grid TimeGrid) ([]Track, []SkippedObject) {
	tracks := make([]Track, 0, len(objects))
	var skipped []SkippedObject

	for _, obj := range objects {
		samples := make([]Vec3, grid.Len())
		var failed error
		for k, t := range grid.Times {
			pos, err := src.Position(obj, t)
			if err == nil && !pos.IsFinite() {
				err = &PropagationError{Object: obj.Name, Time: t, Err: fmt.Errorf("non-finite position")}
			}
			if err != nil {
				failed = err
				break
			}
			samples[k] = pos
		}
		if failed != nil {
			skipped = append(skipped, SkippedObject{Object: obj, Reason: failed})
			continue
		}
		tracks = append(tracks, Track{Object: obj, Samples: samples})
	}
	return tracks, skipped
}

// FindCloseApproaches scans every unordered pair of tracks (i < j, input
// order) and returns events whose minimum separation is strictly below
// threshold, plus the number of pairs examined. Every track must have
// exactly grid.Len() samples.
func FindCloseApproaches(tracks []Track, grid TimeGrid, threshold float64, dist DistanceFunc) ([]CloseApproach, int, error) {
	if math.IsNaN(threshold) || threshold <= 0 {
		return nil, 0, fmt.Errorf("%w: threshold must be positive, got %v", ErrInvalidSweepConfig, threshold)
	}
	if dist == nil {
		dist = EuclideanKm
	}
	for _, tr := range tracks {
		if len(tr.Samples) != grid.Len() {
			return nil, 0, fmt.Errorf("%w: %q has %d samples, grid has %d", ErrTrackLength, tr.Object.Name, len(tr.Samples), grid.Len())
		}
	}

	var events []CloseApproach
	pairs := 0
	for i := 0; i < len(tracks); i++ {
		for j := i + 1; j < len(tracks); j++ {
			pairs++
			d, k := closestApproach(tracks[i].Samples, tracks[j].Samples, dist)
			if k < 0 || !(d < threshold) {
				continue
			}
			a, b := tracks[i].Object, tracks[j].Object
			if lessObject(b, a) {
				a, b = b, a
			}
			events = append(events, CloseApproach{
				A:          a,
				B:          b,
				DistanceKm: d,
				Index:      k,
				Time:       grid.At(k),
			})
		}
	}
	return events, pairs, nil
}

// closestApproach returns the minimum distance between two equally long
// tracks and the first index where it occurs; -1 for empty tracks.
func closestApproach(a, b []Vec3, dist DistanceFunc) (float64, int) {
	minDist := math.Inf(1)
	minIdx := -1
	for k := range a {
		if d := dist(a[k], b[k]); d < minDist {
			minDist = d
			minIdx = k
		}
	}
	return minDist, minIdx
}

func lessObject(a, b model.SpaceObject) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.NoradID < b.NoradID
}
