package core

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/debris-tracker/model"
)

// MinOrbitRadiusKm is the smallest geocentric radius accepted from the
// propagator. Anything lower means the model has decayed below the surface.
const MinOrbitRadiusKm = 6200.0

// PositionSource returns the geocentric position of an object at a time.
// The sweep only depends on this capability, not on how positions are made.
type PositionSource interface {
	Position(obj model.SpaceObject, t time.Time) (Vec3, error)
}

// PositionSourceFunc adapts a function to PositionSource.
type PositionSourceFunc func(obj model.SpaceObject, t time.Time) (Vec3, error)

// Position implements PositionSource.
func (f PositionSourceFunc) Position(obj model.SpaceObject, t time.Time) (Vec3, error) {
	return f(obj, t)
}

// SGP4Source propagates TLEs with SGP4 and returns ECEF positions in km.
// Parsed satellites are cached per element set. Not safe for concurrent use.
type SGP4Source struct {
	sats map[model.ElementSet]satellite.Satellite
}

// NewSGP4Source constructs an SGP4 position source using WGS72 constants,
// which is what published TLEs are fitted against.
func NewSGP4Source() *SGP4Source {
	return &SGP4Source{sats: make(map[model.ElementSet]satellite.Satellite)}
}

func (s *SGP4Source) load(obj model.SpaceObject) (satellite.Satellite, error) {
	if sat, ok := s.sats[obj.Elements]; ok {
		return sat, nil
	}
	if err := ValidateElementSet(obj.Elements); err != nil {
		return satellite.Satellite{}, &PropagationError{Object: obj.Name, Err: err}
	}
	sat := satellite.TLEToSat(obj.Elements.Line1, obj.Elements.Line2, satellite.GravityWGS72)
	s.sats[obj.Elements] = sat
	return sat, nil
}

// Position implements PositionSource.
// go-satellite works in whole seconds; sub-second parts of t are dropped.
func (s *SGP4Source) Position(obj model.SpaceObject, t time.Time) (Vec3, error) {
	sat, err := s.load(obj)
	if err != nil {
		return Vec3{}, err
	}

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	pos := Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
	if !pos.IsFinite() {
		return Vec3{}, &PropagationError{Object: obj.Name, Time: t, Err: fmt.Errorf("sgp4 output is NaN/Inf")}
	}
	if r := pos.Norm(); r < MinOrbitRadiusKm {
		return Vec3{}, &PropagationError{Object: obj.Name, Time: t, Err: fmt.Errorf("radius %.1f km below %.0f km", r, MinOrbitRadiusKm)}
	}
	return pos, nil
}
