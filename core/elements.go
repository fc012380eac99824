package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signalsfoundry/debris-tracker/model"
)

const tleLineLength = 69

// ValidateElementSet checks that both TLE lines have the layout and numeric
// fields the SGP4 parser reads. go-satellite exits the process on a
// malformed field, so every element set goes through here first. Lines are
// checked exactly as given: the parser slices fixed columns, so surrounding
// whitespace is an error.
func ValidateElementSet(es model.ElementSet) error {
	line1, line2 := es.Line1, es.Line2

	if len(line1) != tleLineLength {
		return fmt.Errorf("%w: line1 length %d, expected %d", ErrInvalidElements, len(line1), tleLineLength)
	}
	if len(line2) != tleLineLength {
		return fmt.Errorf("%w: line2 length %d, expected %d", ErrInvalidElements, len(line2), tleLineLength)
	}
	if !strings.HasPrefix(line1, "1 ") {
		return fmt.Errorf("%w: line1 must start with \"1 \"", ErrInvalidElements)
	}
	if !strings.HasPrefix(line2, "2 ") {
		return fmt.Errorf("%w: line2 must start with \"2 \"", ErrInvalidElements)
	}

	ints := []struct {
		name string
		raw  string
	}{
		{"catalog number", strings.TrimSpace(line1[2:7])},
		{"epoch year", line1[18:20]},
	}
	for _, f := range ints {
		if _, err := strconv.Atoi(f.raw); err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidElements, f.name, f.raw)
		}
	}

	// Same slicing and implied-decimal rewriting as the SGP4 parser.
	floats := []struct {
		name string
		raw  string
	}{
		{"epoch day", line1[20:32]},
		{"ndot", strings.Replace(line1[33:43], " ", "", 2)},
		{"nddot", strings.Replace(line1[44:45]+"."+line1[45:50]+"e"+line1[50:52], " ", "", 2)},
		{"bstar", strings.Replace(line1[53:54]+"."+line1[54:59]+"e"+line1[59:61], " ", "", 2)},
		{"inclination", strings.Replace(line2[8:16], " ", "", 2)},
		{"raan", strings.Replace(line2[17:25], " ", "", 2)},
		{"eccentricity", "." + line2[26:33]},
		{"argument of perigee", strings.Replace(line2[34:42], " ", "", 2)},
		{"mean anomaly", strings.Replace(line2[43:51], " ", "", 2)},
		{"mean motion", strings.Replace(line2[52:63], " ", "", 2)},
	}
	for _, f := range floats {
		if _, err := strconv.ParseFloat(f.raw, 64); err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidElements, f.name, f.raw)
		}
	}
	return nil
}
