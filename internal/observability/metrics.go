package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/debris-tracker/core"
)

// SweepCollector bundles Prometheus metrics for proximity sweeps. It
// implements core.SweepMetricsRecorder.
type SweepCollector struct {
	gatherer prometheus.Gatherer

	Sweeps          prometheus.Counter
	ObjectsSkipped  prometheus.Counter
	Approaches      prometheus.Counter
	PairsChecked    prometheus.Gauge
	ObjectsTracked  prometheus.Gauge
	PositionSamples prometheus.Gauge
	SweepDuration   prometheus.Histogram
}

// NewSweepCollector registers sweep metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewSweepCollector(reg prometheus.Registerer) (*SweepCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sweeps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debris_sweeps_total",
		Help: "Total number of completed proximity sweeps.",
	}), "debris_sweeps_total")
	if err != nil {
		return nil, err
	}
	skipped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debris_sweep_objects_skipped_total",
		Help: "Objects excluded from sweeps because they failed to propagate.",
	}), "debris_sweep_objects_skipped_total")
	if err != nil {
		return nil, err
	}
	approaches, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debris_close_approaches_total",
		Help: "Close approaches reported under the alert threshold.",
	}), "debris_close_approaches_total")
	if err != nil {
		return nil, err
	}
	pairs, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "debris_sweep_pairs",
		Help: "Object pairs compared by the most recent sweep.",
	}), "debris_sweep_pairs")
	if err != nil {
		return nil, err
	}
	tracked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "debris_sweep_objects_tracked",
		Help: "Objects with a complete track in the most recent sweep.",
	}), "debris_sweep_objects_tracked")
	if err != nil {
		return nil, err
	}
	samples, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "debris_sweep_position_samples",
		Help: "Position samples computed by the most recent sweep.",
	}), "debris_sweep_position_samples")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "debris_sweep_duration_seconds",
		Help:    "Wall-clock duration of proximity sweeps.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}), "debris_sweep_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SweepCollector{
		gatherer:        gatherer,
		Sweeps:          sweeps,
		ObjectsSkipped:  skipped,
		Approaches:      approaches,
		PairsChecked:    pairs,
		ObjectsTracked:  tracked,
		PositionSamples: samples,
		SweepDuration:   duration,
	}, nil
}

// ObserveSweep implements core.SweepMetricsRecorder.
func (c *SweepCollector) ObserveSweep(s core.SweepStats) {
	if c == nil {
		return
	}
	c.Sweeps.Inc()
	c.ObjectsSkipped.Add(float64(s.Skipped))
	c.Approaches.Add(float64(s.Events))
	c.PairsChecked.Set(float64(s.Pairs))
	c.ObjectsTracked.Set(float64(s.Tracked))
	c.PositionSamples.Set(float64(s.Samples))
	c.SweepDuration.Observe(s.Duration.Seconds())
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SweepCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SweepCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
