package tle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/signalsfoundry/debris-tracker/timectrl"
)

// ErrCacheMiss is returned by Latest when a group has no cached files.
var ErrCacheMiss = errors.New("no cached TLE file")

const (
	cacheExt        = ".tle"
	cacheTimeLayout = "20060102_150405"
	latestPointer   = "latest_tle.txt"
)

// Cache stores fetched documents as timestamped files, one directory per
// group: <root>/<group>/YYYYMMDD_HHMMSS.tle.
type Cache struct {
	root     string
	maxFiles int
	clock    timectrl.Clock
}

// NewCache returns a Cache rooted at dir that keeps at most maxFiles
// documents per group (0 keeps everything).
func NewCache(dir string, maxFiles int, clock timectrl.Clock) *Cache {
	if clock == nil {
		clock = timectrl.SystemClock{}
	}
	return &Cache{root: dir, maxFiles: maxFiles, clock: clock}
}

// Dir returns the directory holding a group's files.
func (c *Cache) Dir(group string) string {
	return filepath.Join(c.root, group)
}

// Write stores data as the newest document for group and returns its path.
func (c *Cache) Write(group string, data []byte) (string, error) {
	dir := c.Dir(group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	path := filepath.Join(dir, c.clock.Now().UTC().Format(cacheTimeLayout)+cacheExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit cache file: %w", err)
	}

	// Best effort.
	_ = os.WriteFile(filepath.Join(dir, latestPointer), []byte(path+"\n"), 0o644)

	if err := c.prune(group); err != nil {
		return path, err
	}
	return path, nil
}

// Latest returns the path of the newest cached document for group.
func (c *Cache) Latest(group string) (string, error) {
	files, err := c.files(group)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w for group %q", ErrCacheMiss, group)
	}
	return files[len(files)-1], nil
}

// Read returns the newest cached document for group and its path.
func (c *Cache) Read(group string) ([]byte, string, error) {
	path, err := c.Latest(group)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read cache file: %w", err)
	}
	return data, path, nil
}

// IsFresh reports whether path was modified less than maxAge ago.
func (c *Cache) IsFresh(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return c.clock.Now().Sub(info.ModTime()) < maxAge
}

// files lists cached documents oldest first. File names sort chronologically.
func (c *Cache) files(group string) ([]string, error) {
	entries, err := os.ReadDir(c.Dir(group))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheExt) {
			continue
		}
		out = append(out, filepath.Join(c.Dir(group), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (c *Cache) prune(group string) error {
	if c.maxFiles <= 0 {
		return nil
	}
	files, err := c.files(group)
	if err != nil {
		return err
	}
	for len(files) > c.maxFiles {
		if err := os.Remove(files[0]); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("prune cache: %w", err)
		}
		files = files[1:]
	}
	return nil
}
