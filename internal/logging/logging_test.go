package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})

	l.With(String("component", "sweep")).Warn(context.Background(), "skipping object",
		String("object", "COSMOS 2251 DEB"),
		Int("samples", 120),
		Err(errors.New("bad elements")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]any{
		"msg":       "skipping object",
		"level":     "WARN",
		"component": "sweep",
		"object":    "COSMOS 2251 DEB",
		"samples":   float64(120),
		"error":     "bad elements",
	} {
		if rec[key] != want {
			t.Fatalf("%s = %v, want %v", key, rec[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Error(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("error line missing: %q", buf.String())
	}
}

func TestWithRunLoggerStableID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, l := WithRunLogger(context.Background(), base)
	id := RunIDFromContext(ctx)
	if id == "" {
		t.Fatalf("expected run id on context")
	}
	ctx2, _ := EnsureRunID(ctx)
	if got := RunIDFromContext(ctx2); got != id {
		t.Fatalf("EnsureRunID replaced id %q with %q", id, got)
	}

	l.Info(ctx, "hello")
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("log line missing run id %q: %q", id, buf.String())
	}
	if FromContext(ctx) == nil {
		t.Fatalf("FromContext returned nil")
	}
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	if _, ok := FromContext(context.Background()).(noopLogger); !ok {
		t.Fatalf("expected noop logger when none stored")
	}
}
