package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/debris-tracker/model"
)

// ISS sample TLE.
const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func issObject() model.SpaceObject {
	return model.SpaceObject{
		Name:     "ISS (ZARYA)",
		NoradID:  25544,
		Elements: model.ElementSet{Line1: issLine1, Line2: issLine2},
	}
}

// We don't assert exact orbital values (those belong to go-satellite);
// we check plausibility and that positions differ at distinct times.
func TestSGP4Source_ChangesOverTime(t *testing.T) {
	src := NewSGP4Source()
	obj := issObject()

	t1 := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)

	first, err := src.Position(obj, t1)
	if err != nil {
		t.Fatalf("Position t1: %v", err)
	}
	second, err := src.Position(obj, t2)
	if err != nil {
		t.Fatalf("Position t2: %v", err)
	}
	if first == second {
		t.Fatalf("expected orbital position to change over time, got %+v at both times", first)
	}

	// ISS orbits at roughly 6371 + 420 km.
	for _, p := range []Vec3{first, second} {
		if r := p.Norm(); r < 6600 || r > 7000 {
			t.Fatalf("radius = %.1f km, want ISS-like ~6790 km", r)
		}
	}

	// ~7.66 km/s over 300 s.
	if d := first.DistanceTo(second); d < 1000 || d > 2500 {
		t.Fatalf("5 minute displacement = %.1f km, want ~2000 km", d)
	}
}

func TestSGP4Source_InvalidElements(t *testing.T) {
	src := NewSGP4Source()
	obj := model.SpaceObject{
		Name:     "BROKEN",
		Elements: model.ElementSet{Line1: "1 garbage", Line2: "2 garbage"},
	}
	_, err := src.Position(obj, time.Now())
	if err == nil {
		t.Fatalf("expected error for invalid TLE")
	}
	if !errors.Is(err, ErrPropagation) || !errors.Is(err, ErrInvalidElements) {
		t.Fatalf("err = %v, want ErrPropagation wrapping ErrInvalidElements", err)
	}
}

func TestSGP4Source_SweepSkipsBrokenObject(t *testing.T) {
	iss := issObject()
	twin := issObject()
	twin.Name = "ISS TWIN"
	broken := model.SpaceObject{Name: "BROKEN", Elements: model.ElementSet{Line1: "1", Line2: "2"}}
	padded := issObject()
	padded.Name = "PADDED"
	padded.Elements.Line1 = " " + issLine1

	cfg := SweepConfig{
		Threshold: 1,
		Duration:  10 * time.Minute,
		Step:      time.Minute,
		Epoch:     time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
	}
	res, err := NewSweeper(NewSGP4Source()).Run(context.Background(), []model.SpaceObject{iss, broken, padded, twin}, cfg)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Skipped) != 2 || res.Skipped[0].Object.Name != "BROKEN" || res.Skipped[1].Object.Name != "PADDED" {
		t.Fatalf("skipped = %+v, want BROKEN and PADDED", res.Skipped)
	}
	if len(res.Events) != 1 {
		t.Fatalf("identical element sets should produce one event, got %d", len(res.Events))
	}
	if ev := res.Events[0]; ev.DistanceKm != 0 || ev.Index != 0 {
		t.Fatalf("event = %+v, want zero distance at index 0", ev)
	}
}

func TestValidateElementSet(t *testing.T) {
	if err := ValidateElementSet(model.ElementSet{Line1: issLine1, Line2: issLine2}); err != nil {
		t.Fatalf("valid ISS TLE rejected: %v", err)
	}

	badMeanMotion := issLine2[:52] + "15.4937X953" + issLine2[63:]
	cases := map[string]model.ElementSet{
		"short line1":      {Line1: issLine1[:60], Line2: issLine2},
		"swapped lines":    {Line1: issLine2, Line2: issLine1},
		"bad mean motion":  {Line1: issLine1, Line2: badMeanMotion},
		"bad catalog":      {Line1: "1 2X544" + issLine1[7:], Line2: issLine2},
		"empty everything": {},
		"leading space":    {Line1: " " + issLine1, Line2: issLine2},
		"trailing space":   {Line1: issLine1, Line2: issLine2 + " "},
	}
	for name, es := range cases {
		if err := ValidateElementSet(es); !errors.Is(err, ErrInvalidElements) {
			t.Fatalf("%s: err = %v, want ErrInvalidElements", name, err)
		}
	}
}

func TestSGP4Source_Geodetic(t *testing.T) {
	src := NewSGP4Source()
	pos, err := src.Geodetic(issObject(), time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Geodetic: %v", err)
	}
	// Latitude is bounded by the 51.6° inclination.
	if math.Abs(pos.LatitudeDeg) > 52 {
		t.Fatalf("latitude = %.2f, want within ±52", pos.LatitudeDeg)
	}
	if pos.LongitudeDeg < -180 || pos.LongitudeDeg > 180 {
		t.Fatalf("longitude = %.2f, want within ±180", pos.LongitudeDeg)
	}
	if pos.AltitudeKm < 300 || pos.AltitudeKm > 500 {
		t.Fatalf("altitude = %.1f km, want ~420 km", pos.AltitudeKm)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{0: 0, 190: -170, -190: 170, 360: 0, 45: 45}
	for in, want := range cases {
		if got := normalizeLongitude(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("normalizeLongitude(%v) = %v, want %v", in, got, want)
		}
	}
}
