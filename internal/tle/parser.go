// Package tle fetches, caches and parses two-line element sets.
package tle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/debris-tracker/core"
	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

var (
	// ErrNoEntries is returned when a document holds no usable element sets.
	ErrNoEntries = errors.New("no TLE entries")
	// ErrMalformed is returned by Validate for documents that are not TLE text.
	ErrMalformed = errors.New("malformed TLE document")
)

// Parse reads TLE text from r. Both the 3-line (NAME, L1, L2) and the bare
// 2-line (L1, L2) layouts are accepted, mixed freely. Entries whose element
// set would not propagate are skipped with a warning.
func Parse(ctx context.Context, r io.Reader, log logging.Logger) ([]model.SpaceObject, error) {
	if log == nil {
		log = logging.Noop()
	}
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var objects []model.SpaceObject
	for i := 0; i+1 < len(lines); {
		var name, line1, line2 string
		switch {
		case i+2 < len(lines) && isLine1(lines[i+1]) && isLine2(lines[i+2]):
			name, line1, line2 = lines[i], lines[i+1], lines[i+2]
			i += 3
		case isLine1(lines[i]) && isLine2(lines[i+1]):
			line1, line2 = lines[i], lines[i+1]
			i += 2
		default:
			i++
			continue
		}

		obj, err := newObject(name, line1, line2)
		if err != nil {
			log.Warn(ctx, "skipping malformed TLE entry",
				logging.String("name", name),
				logging.Err(err),
			)
			continue
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// Validate applies light structural checks to a freshly fetched document:
// at least one entry, a multiple of three non-blank lines, and "1 "/"2 "
// prefixes on every element line. No checksum validation.
func Validate(data []byte) error {
	lines, err := readLines(strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	if len(lines) < 3 || len(lines)%3 != 0 {
		return fmt.Errorf("%w: %d lines is not a multiple of 3", ErrMalformed, len(lines))
	}
	for i := 0; i < len(lines); i += 3 {
		if !isLine1(lines[i+1]) || !isLine2(lines[i+2]) {
			name := lines[i]
			if len(name) > 40 {
				name = name[:40]
			}
			return fmt.Errorf("%w: element lines malformed near object %q", ErrMalformed, name)
		}
	}
	return nil
}

// CountObjects returns the number of 3-line entries in data.
func CountObjects(data []byte) int {
	lines, _ := readLines(strings.NewReader(string(data)))
	return len(lines) / 3
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}
	return lines, nil
}

func isLine1(s string) bool { return strings.HasPrefix(s, "1 ") }
func isLine2(s string) bool { return strings.HasPrefix(s, "2 ") }

func newObject(name, line1, line2 string) (model.SpaceObject, error) {
	es := model.ElementSet{Line1: line1, Line2: line2}
	if err := core.ValidateElementSet(es); err != nil {
		return model.SpaceObject{}, err
	}

	noradID, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return model.SpaceObject{}, fmt.Errorf("invalid NORAD id %q: %w", line1[2:7], err)
	}
	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return model.SpaceObject{}, err
	}

	name = strings.TrimSpace(strings.TrimPrefix(name, "0 "))
	if name == "" {
		name = fmt.Sprintf("%s %d", model.UnknownName, noradID)
	}
	return model.SpaceObject{
		Name:     name,
		NoradID:  noradID,
		Epoch:    epoch,
		Elements: es,
	}, nil
}

// parseEpoch converts a TLE epoch in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// Day 1 is Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
