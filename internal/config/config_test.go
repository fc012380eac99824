package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/debris-tracker/internal/tle"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debris.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10.0, cfg.Sweep.ThresholdKm)
	assert.Equal(t, time.Hour, cfg.Sweep.Duration.Duration)
	assert.Equal(t, 30*time.Second, cfg.Sweep.Step.Duration)
	assert.Equal(t, 60, cfg.Sweep.MaxObjects)
	assert.Equal(t, 180*time.Minute, cfg.TLE.CacheMaxAge.Duration)
	assert.Equal(t, tle.DefaultBaseURL, cfg.TLE.BaseURL)
	assert.Equal(t, tle.DefaultFetcherConfig().MaxAttempts, cfg.TLE.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[tle]
group = "stations"
cache_max_age = "2h"

[sweep]
threshold_km = 5.5
step = "10s"
include_types = ["Debris", "Rocket Body"]

[log]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "stations", cfg.TLE.Group)
	assert.Equal(t, 2*time.Hour, cfg.TLE.CacheMaxAge.Duration)
	assert.Equal(t, 5.5, cfg.Sweep.ThresholdKm)
	assert.Equal(t, 10*time.Second, cfg.Sweep.Step.Duration)
	assert.Equal(t, time.Hour, cfg.Sweep.Duration.Duration, "unset keys keep defaults")
	assert.Equal(t, []string{"Debris", "Rocket Body"}, cfg.Sweep.IncludeTypes)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "[sweep]\nthreshhold_km = 3\n"))
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "[sweep]\nstep = \"soon\"\n"))
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	_, err := Load(writeConfig(t, "[sweep]\nthreshold_km = 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold_km")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEBRIS_THRESHOLD_KM", "2.5")
	t.Setenv("DEBRIS_STEP", "15s")
	t.Setenv("DEBRIS_MAX_OBJECTS", "12")
	t.Setenv("DEBRIS_INCLUDE_TYPES", "Debris, ,Payload")
	t.Setenv("DEBRIS_TLE_GROUP", "starlink")

	cfg, err := Load(writeConfig(t, "[sweep]\nthreshold_km = 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Sweep.ThresholdKm)
	assert.Equal(t, 15*time.Second, cfg.Sweep.Step.Duration)
	assert.Equal(t, 12, cfg.Sweep.MaxObjects)
	assert.Equal(t, []string{"Debris", "Payload"}, cfg.Sweep.IncludeTypes)
	assert.Equal(t, "starlink", cfg.TLE.Group)
}

func TestEnvOverrideErrors(t *testing.T) {
	cfg := Default()
	env := map[string]string{"DEBRIS_THRESHOLD_KM": "far", "DEBRIS_DURATION": "forever"}
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEBRIS_THRESHOLD_KM")
	assert.Contains(t, err.Error(), "DEBRIS_DURATION")
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"negative step":      func(c *Config) { c.Sweep.Step = Duration{-time.Second} },
		"sub-second step":    func(c *Config) { c.Sweep.Step = Duration{500 * time.Millisecond} },
		"fractional step":    func(c *Config) { c.Sweep.Step = Duration{1500 * time.Millisecond} },
		"zero duration":      func(c *Config) { c.Sweep.Duration = Duration{} },
		"negative max":       func(c *Config) { c.Sweep.MaxObjects = -1 },
		"confidence too big": func(c *Config) { c.Sweep.MinConfidence = 1.5 },
		"empty group":        func(c *Config) { c.TLE.Group = "" },
		"sample ratio":       func(c *Config) { c.Tracing.SampleRatio = 2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "1h0m0s")

	cfg, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, Default().Sweep.Duration, cfg.Sweep.Duration)
	assert.Equal(t, Default().TLE.CacheMaxAge, cfg.TLE.CacheMaxAge)
	assert.Equal(t, Default().Sweep.ThresholdKm, cfg.Sweep.ThresholdKm)
}
