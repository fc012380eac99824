package tle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/debris-tracker/timectrl"
)

var cacheEpoch = time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

func TestCacheWriteAndLatest(t *testing.T) {
	clock := timectrl.NewFixedClock(cacheEpoch)
	c := NewCache(t.TempDir(), 0, clock)

	_, err := c.Latest("active")
	require.ErrorIs(t, err, ErrCacheMiss)

	first, err := c.Write("active", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, "20250314_090000.tle", filepath.Base(first))

	clock.Advance(time.Minute)
	second, err := c.Write("active", []byte("two"))
	require.NoError(t, err)

	latest, err := c.Latest("active")
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	data, path, err := c.Read("active")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.Equal(t, second, path)

	pointer, err := os.ReadFile(filepath.Join(c.Dir("active"), latestPointer))
	require.NoError(t, err)
	assert.Equal(t, second+"\n", string(pointer))
}

func TestCachePrune(t *testing.T) {
	clock := timectrl.NewFixedClock(cacheEpoch)
	c := NewCache(t.TempDir(), 2, clock)

	var paths []string
	for range 4 {
		p, err := c.Write("stations", []byte("x"))
		require.NoError(t, err)
		paths = append(paths, p)
		clock.Advance(time.Second)
	}

	files, err := c.files("stations")
	require.NoError(t, err)
	assert.Equal(t, paths[2:], files)
}

func TestCacheIsFresh(t *testing.T) {
	clock := timectrl.NewFixedClock(cacheEpoch)
	c := NewCache(t.TempDir(), 0, clock)

	path, err := c.Write("active", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(path, cacheEpoch, cacheEpoch))

	assert.True(t, c.IsFresh(path, time.Hour))
	clock.Advance(2 * time.Hour)
	assert.False(t, c.IsFresh(path, time.Hour))
	assert.False(t, c.IsFresh(filepath.Join(c.Dir("active"), "missing.tle"), time.Hour))
}

func newTestSource(t *testing.T, handler http.HandlerFunc, clock *timectrl.FixedClock) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Source{
		Fetcher: NewFetcher(srv.URL, FetcherConfig{Timeout: time.Second, MaxAttempts: 1}, nil),
		Cache:   NewCache(t.TempDir(), 5, clock),
		MaxAge:  time.Hour,
	}
}

type recordingObserver struct {
	ok, failed int
}

func (r *recordingObserver) ObserveFetch(_ string, ok bool, _ int, _ time.Duration) {
	if ok {
		r.ok++
	} else {
		r.failed++
	}
}

func TestSourceLoadFetchesThenUsesCache(t *testing.T) {
	var calls atomic.Int32
	clock := timectrl.NewFixedClock(time.Now().UTC())
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(threeLine("ISS (ZARYA)", issLine1, issLine2)))
	}, clock)
	obs := &recordingObserver{}
	src.Observer = obs

	res, err := src.Load(context.Background(), "stations")
	require.NoError(t, err)
	assert.Equal(t, OriginNetwork, res.Origin)
	require.Len(t, res.Objects, 1)

	res, err = src.Load(context.Background(), "stations")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, res.Origin)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, obs.ok)
}

func TestSourceLoadFallsBackToStaleCache(t *testing.T) {
	clock := timectrl.NewFixedClock(time.Now().UTC())
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, clock)
	obs := &recordingObserver{}
	src.Observer = obs

	_, err := src.Load(context.Background(), "active")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheMiss)

	stale, err := src.Cache.Write("active", []byte(threeLine("ISS (ZARYA)", issLine1, issLine2)))
	require.NoError(t, err)
	old := clock.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	res, err := src.Load(context.Background(), "active")
	require.NoError(t, err)
	assert.Equal(t, OriginStaleCache, res.Origin)
	assert.Equal(t, stale, res.Path)
	assert.Equal(t, 2, obs.failed)
}

func TestSourceRejectsInvalidDownload(t *testing.T) {
	clock := timectrl.NewFixedClock(time.Now().UTC())
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>\n<body>oops</body>\n</html>\n"))
	}, clock)

	_, _, err := src.Refresh(context.Background(), "active")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = src.Cache.Latest("active")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLoadFamousFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	f := NewFetcher(srv.URL, FetcherConfig{Timeout: time.Second, MaxAttempts: 1}, nil)

	fallback := filepath.Join(t.TempDir(), "famous.txt")
	require.NoError(t, os.WriteFile(fallback, []byte(threeLine("HUBBLE SPACE TELESCOPE", hubbleLine1, hubbleLine2)), 0o644))

	objects, err := LoadFamous(context.Background(), f, []string{"HUBBLE SPACE TELESCOPE"}, fallback, nil)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, 20580, objects[0].NoradID)

	objects, err = LoadFamous(context.Background(), f, nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLoadFamousOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("NAME") == "ISS (ZARYA)" {
			_, _ = w.Write([]byte(threeLine("ISS (ZARYA)", issLine1, issLine2)))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	f := NewFetcher(srv.URL, FetcherConfig{Timeout: time.Second, MaxAttempts: 1}, nil)

	objects, err := LoadFamous(context.Background(), f, nil, "", nil)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "ISS (ZARYA)", objects[0].Name)
}
