// Package classify labels space objects as payload, rocket body or debris
// from their orbital elements.
package classify

import (
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/debris-tracker/model"
)

// Feature names, in the order Features returns them.
const (
	FeatureInclination  = "inc_deg"
	FeatureEccentricity = "ecc"
	FeatureMeanMotion   = "mm_rev_day"
	FeatureBStar        = "bstar"
)

// DefaultFeatures is the feature order used when a model file does not
// specify one.
var DefaultFeatures = []string{FeatureInclination, FeatureEccentricity, FeatureMeanMotion, FeatureBStar}

// Features holds the orbital parameters the classifier looks at. Fields that
// could not be parsed are NaN.
type Features struct {
	InclinationDeg float64
	Eccentricity   float64
	MeanMotion     float64 // revolutions per day
	BStar          float64
}

// Get returns the named feature, or NaN for an unknown name.
func (f Features) Get(name string) float64 {
	switch name {
	case FeatureInclination:
		return f.InclinationDeg
	case FeatureEccentricity:
		return f.Eccentricity
	case FeatureMeanMotion:
		return f.MeanMotion
	case FeatureBStar:
		return f.BStar
	}
	return math.NaN()
}

// Extract reads the features from an element set.
func Extract(es model.ElementSet) Features {
	f := Features{
		InclinationDeg: math.NaN(),
		Eccentricity:   math.NaN(),
		MeanMotion:     math.NaN(),
		BStar:          math.NaN(),
	}
	line1 := strings.TrimRight(es.Line1, " \r\n")
	line2 := strings.TrimRight(es.Line2, " \r\n")

	if len(line2) >= 63 {
		f.InclinationDeg = parseField(line2[8:16])
		if ecc := strings.TrimSpace(line2[26:33]); ecc != "" {
			f.Eccentricity = parseField("0." + ecc)
		}
		f.MeanMotion = parseField(line2[52:63])
	}
	if len(line1) >= 61 {
		f.BStar = parseBStar(line1[53:59], line1[59:61])
	}
	return f
}

func parseField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseBStar decodes the implied-decimal drag term: mantissa "-12345" and
// exponent "-4" mean -0.12345e-4.
func parseBStar(mantissa, exponent string) float64 {
	mantissa = strings.TrimSpace(mantissa)
	sign := ""
	if strings.HasPrefix(mantissa, "-") || strings.HasPrefix(mantissa, "+") {
		sign, mantissa = mantissa[:1], mantissa[1:]
	}
	if mantissa == "" {
		return math.NaN()
	}
	for _, r := range mantissa {
		if r < '0' || r > '9' {
			return math.NaN()
		}
	}
	m, err := strconv.ParseFloat(sign+"0."+mantissa, 64)
	if err != nil {
		return math.NaN()
	}
	e, err := strconv.Atoi(strings.TrimSpace(exponent))
	if err != nil {
		return math.NaN()
	}
	return m * math.Pow10(e)
}
