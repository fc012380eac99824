package tle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

// FetchObserver receives the outcome of every network fetch. Implemented by
// the observability package.
type FetchObserver interface {
	ObserveFetch(group string, ok bool, bytes int, d time.Duration)
}

// Origin reports where Load got its data.
type Origin string

const (
	OriginCache      Origin = "cache"
	OriginNetwork    Origin = "network"
	OriginStaleCache Origin = "stale-cache"
)

// LoadResult is returned by Source.Load.
type LoadResult struct {
	Objects []model.SpaceObject
	Path    string
	Origin  Origin
}

// Source combines a Fetcher and a Cache: a fresh cached file is reused,
// otherwise the group is downloaded, validated and cached. A failed download
// falls back to the newest cached file regardless of age.
type Source struct {
	Fetcher  *Fetcher
	Cache    *Cache
	MaxAge   time.Duration
	Log      logging.Logger
	Observer FetchObserver
}

// Refresh downloads group unconditionally and caches it.
func (s *Source) Refresh(ctx context.Context, group string) (string, int, error) {
	_, path, n, err := s.refresh(ctx, group)
	return path, n, err
}

func (s *Source) refresh(ctx context.Context, group string) ([]byte, string, int, error) {
	log := s.logger()
	start := time.Now()
	data, err := s.Fetcher.FetchGroup(ctx, group)
	if err == nil {
		err = Validate(data)
	}
	if s.Observer != nil {
		s.Observer.ObserveFetch(group, err == nil, len(data), time.Since(start))
	}
	if err != nil {
		return nil, "", 0, fmt.Errorf("fetch group %q: %w", group, err)
	}

	path, err := s.Cache.Write(group, data)
	if err != nil {
		if path == "" {
			return nil, "", 0, err
		}
		log.Warn(ctx, "cache prune failed", logging.Err(err))
	}
	n := CountObjects(data)
	log.Info(ctx, "downloaded TLE data",
		logging.String("group", group),
		logging.Int("objects", n),
		logging.String("path", path),
	)
	return data, path, n, nil
}

// Load returns the parsed objects for group.
func (s *Source) Load(ctx context.Context, group string) (LoadResult, error) {
	log := s.logger()

	if data, path, err := s.Cache.Read(group); err == nil && s.Cache.IsFresh(path, s.MaxAge) {
		log.Debug(ctx, "using cached TLE data", logging.String("path", path))
		return s.parse(ctx, data, path, OriginCache)
	}

	data, path, _, err := s.refresh(ctx, group)
	if err == nil {
		return s.parse(ctx, data, path, OriginNetwork)
	}

	stale, path, cacheErr := s.Cache.Read(group)
	if cacheErr != nil {
		return LoadResult{}, errors.Join(err, cacheErr)
	}
	log.Warn(ctx, "download failed, using stale cache",
		logging.String("path", path),
		logging.Err(err),
	)
	return s.parse(ctx, stale, path, OriginStaleCache)
}

func (s *Source) parse(ctx context.Context, data []byte, path string, origin Origin) (LoadResult, error) {
	objects, err := Parse(ctx, bytes.NewReader(data), s.logger())
	if err != nil {
		return LoadResult{}, err
	}
	if len(objects) == 0 {
		return LoadResult{}, fmt.Errorf("%w in %s", ErrNoEntries, path)
	}
	return LoadResult{Objects: objects, Path: path, Origin: origin}, nil
}

func (s *Source) logger() logging.Logger {
	if s.Log == nil {
		return logging.Noop()
	}
	return s.Log
}
