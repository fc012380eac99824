package core

import (
	"math"
	"testing"
)

func TestDistanceTo(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	if got := a.DistanceTo(b); got != 5 {
		t.Fatalf("DistanceTo = %v, want 5", got)
	}
	if got := b.DistanceTo(a); got != 5 {
		t.Fatalf("DistanceTo reversed = %v, want 5", got)
	}
	if got := EuclideanKm(a, b); got != 5 {
		t.Fatalf("EuclideanKm = %v, want 5", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 7000}).IsFinite() {
		t.Fatalf("expected finite vector")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Fatalf("NaN component should not be finite")
	}
	if (Vec3{Z: math.Inf(-1)}).IsFinite() {
		t.Fatalf("Inf component should not be finite")
	}
}

func TestNormSub(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	if got := v.Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := v.Sub(Vec3{X: 1, Y: 1, Z: 1}); got != (Vec3{X: 2, Y: 3, Z: -1}) {
		t.Fatalf("Sub = %+v", got)
	}
}
