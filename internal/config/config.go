// Package config loads debris-tracker settings from a TOML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/signalsfoundry/debris-tracker/internal/tle"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "debris-tracker.toml"

// Duration wraps time.Duration so TOML files can say "30s" or "1h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// TLE configures ingestion.
type TLE struct {
	BaseURL      string   `toml:"base_url"`
	Group        string   `toml:"group"`
	CacheDir     string   `toml:"cache_dir"`
	CacheMaxAge  Duration `toml:"cache_max_age"`
	MaxFiles     int      `toml:"max_files"`
	FamousFile   string   `toml:"famous_file"`
	Timeout      Duration `toml:"timeout"`
	MaxAttempts  uint     `toml:"max_attempts"`
	MinInterval  Duration `toml:"min_interval"`
	RetryInitial Duration `toml:"retry_initial"`
}

// Sweep configures the close-approach check.
type Sweep struct {
	ThresholdKm   float64  `toml:"threshold_km"`
	Duration      Duration `toml:"duration"`
	Step          Duration `toml:"step"`
	MaxObjects    int      `toml:"max_objects"`
	Epoch         string   `toml:"epoch"` // empty means now
	IncludeTypes  []string `toml:"include_types"`
	MinConfidence float64  `toml:"min_confidence"`
	Famous        bool     `toml:"famous"`
}

// Classifier configures object classification.
type Classifier struct {
	Enabled   bool   `toml:"enabled"`
	ModelPath string `toml:"model_path"` // empty uses the built-in model
}

// Log mirrors logging.Config.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `toml:"addr"`
}

// Tracing mirrors observability.TracingConfig.
type Tracing struct {
	Enabled     bool    `toml:"enabled"`
	ServiceName string  `toml:"service_name"`
	Exporter    string  `toml:"exporter"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
}

// Config is the full configuration tree.
type Config struct {
	TLE        TLE        `toml:"tle"`
	Sweep      Sweep      `toml:"sweep"`
	Classifier Classifier `toml:"classifier"`
	Log        Log        `toml:"log"`
	Metrics    Metrics    `toml:"metrics"`
	Tracing    Tracing    `toml:"tracing"`

	path string
}

// Default returns the built-in settings.
func Default() *Config {
	fetch := tle.DefaultFetcherConfig()
	return &Config{
		TLE: TLE{
			BaseURL:      tle.DefaultBaseURL,
			Group:        "active",
			CacheDir:     "data/tle_cache",
			CacheMaxAge:  Duration{180 * time.Minute},
			MaxFiles:     10,
			FamousFile:   "data/famous_tles/famous.txt",
			Timeout:      Duration{fetch.Timeout},
			MaxAttempts:  fetch.MaxAttempts,
			MinInterval:  Duration{fetch.MinInterval},
			RetryInitial: Duration{fetch.RetryInitial},
		},
		Sweep: Sweep{
			ThresholdKm: 10,
			Duration:    Duration{60 * time.Minute},
			Step:        Duration{30 * time.Second},
			MaxObjects:  60,
			Famous:      true,
		},
		Classifier: Classifier{Enabled: true},
		Log:        Log{Level: "info", Format: "text"},
		Tracing: Tracing{
			ServiceName: "debris-tracker",
			Exporter:    "stdout",
			SampleRatio: 1,
		},
	}
}

// Load builds a Config from defaults, then the TOML file at path, then
// DEBRIS_* environment variables. An empty path reads DefaultFile if it
// exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Path returns the file the config was read from, or "" for defaults only.
func (c *Config) Path() string {
	return c.path
}

// Marshal renders the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("DEBRIS_TLE_BASE_URL", &c.TLE.BaseURL)
	str("DEBRIS_TLE_GROUP", &c.TLE.Group)
	str("DEBRIS_CACHE_DIR", &c.TLE.CacheDir)
	dur("DEBRIS_CACHE_MAX_AGE", &c.TLE.CacheMaxAge)
	str("DEBRIS_FAMOUS_FILE", &c.TLE.FamousFile)

	float("DEBRIS_THRESHOLD_KM", &c.Sweep.ThresholdKm)
	dur("DEBRIS_DURATION", &c.Sweep.Duration)
	dur("DEBRIS_STEP", &c.Sweep.Step)
	integer("DEBRIS_MAX_OBJECTS", &c.Sweep.MaxObjects)
	str("DEBRIS_EPOCH", &c.Sweep.Epoch)
	if v, ok := lookup("DEBRIS_INCLUDE_TYPES"); ok && v != "" {
		c.Sweep.IncludeTypes = SplitList(v)
	}
	float("DEBRIS_MIN_CONFIDENCE", &c.Sweep.MinConfidence)

	str("DEBRIS_MODEL_PATH", &c.Classifier.ModelPath)
	str("DEBRIS_METRICS_ADDR", &c.Metrics.Addr)

	return errors.Join(errs...)
}

// SplitList splits a comma-separated value, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings the tool cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if math.IsNaN(c.Sweep.ThresholdKm) || c.Sweep.ThresholdKm <= 0 {
		errs = append(errs, fmt.Errorf("sweep.threshold_km must be positive, got %v", c.Sweep.ThresholdKm))
	}
	if c.Sweep.Duration.Duration <= 0 {
		errs = append(errs, fmt.Errorf("sweep.duration must be positive, got %s", c.Sweep.Duration.Duration))
	}
	if c.Sweep.Step.Duration <= 0 {
		errs = append(errs, fmt.Errorf("sweep.step must be positive, got %s", c.Sweep.Step.Duration))
	} else if c.Sweep.Step.Duration%time.Second != 0 {
		// SGP4 is sampled at whole seconds.
		errs = append(errs, fmt.Errorf("sweep.step must be a whole number of seconds, got %s", c.Sweep.Step.Duration))
	}
	if c.Sweep.MaxObjects < 0 {
		errs = append(errs, fmt.Errorf("sweep.max_objects must not be negative, got %d", c.Sweep.MaxObjects))
	}
	if c.Sweep.MinConfidence < 0 || c.Sweep.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("sweep.min_confidence must be within [0, 1], got %v", c.Sweep.MinConfidence))
	}
	if c.TLE.Group == "" {
		errs = append(errs, errors.New("tle.group must be set"))
	}
	if c.TLE.CacheMaxAge.Duration < 0 {
		errs = append(errs, fmt.Errorf("tle.cache_max_age must not be negative, got %s", c.TLE.CacheMaxAge.Duration))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}
