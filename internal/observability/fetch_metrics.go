package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchCollector exposes TLE download metrics. It implements
// tle.FetchObserver.
type FetchCollector struct {
	Fetches       *prometheus.CounterVec
	FetchBytes    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
}

// NewFetchCollector registers fetch metrics against the provided registerer.
func NewFetchCollector(reg prometheus.Registerer) (*FetchCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_tle_fetches_total",
		Help: "TLE group downloads, labeled by group and result (ok or error).",
	}, []string{"group", "result"}), "debris_tle_fetches_total")
	if err != nil {
		return nil, err
	}
	bytes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_tle_fetch_bytes_total",
		Help: "Bytes of TLE text downloaded, labeled by group.",
	}, []string{"group"}), "debris_tle_fetch_bytes_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "debris_tle_fetch_duration_seconds",
		Help:    "TLE download latency in seconds, retries included.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"group"}), "debris_tle_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &FetchCollector{
		Fetches:       fetches,
		FetchBytes:    bytes,
		FetchDuration: duration,
	}, nil
}

// ObserveFetch records one download attempt sequence.
func (c *FetchCollector) ObserveFetch(group string, ok bool, n int, d time.Duration) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.Fetches.WithLabelValues(group, result).Inc()
	if ok {
		c.FetchBytes.WithLabelValues(group).Add(float64(n))
	}
	c.FetchDuration.WithLabelValues(group).Observe(d.Seconds())
}
