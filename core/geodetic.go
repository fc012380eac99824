package core

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/debris-tracker/model"
)

// GeodeticPosition is a sub-satellite point.
type GeodeticPosition struct {
	LatitudeDeg  float64
	LongitudeDeg float64 // -180..180
	AltitudeKm   float64
}

// Geodetic propagates obj to t and returns its sub-satellite point.
func (s *SGP4Source) Geodetic(obj model.SpaceObject, t time.Time) (GeodeticPosition, error) {
	sat, err := s.load(obj)
	if err != nil {
		return GeodeticPosition{}, err
	}

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	gmst := satellite.GSTimeFromDate(year, int(month), day, hour, min, sec)
	alt, _, ll := satellite.ECIToLLA(posECI, gmst)
	deg := satellite.LatLongDeg(ll)

	pos := GeodeticPosition{
		LatitudeDeg:  deg.Latitude,
		LongitudeDeg: normalizeLongitude(deg.Longitude),
		AltitudeKm:   alt,
	}
	if math.IsNaN(pos.LatitudeDeg) || math.IsNaN(pos.LongitudeDeg) || math.IsNaN(pos.AltitudeKm) {
		return GeodeticPosition{}, &PropagationError{Object: obj.Name, Time: t, Err: fmt.Errorf("geodetic position is NaN")}
	}
	return pos, nil
}

func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
