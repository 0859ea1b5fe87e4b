package orrery

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestComputePositionCircle(t *testing.T) {
	for θ := -2 * math.Pi; θ <= 4*math.Pi; θ += 0.1 {
		R := ComputePosition(θ, 12, 12, nil)
		if R[1] != 0 {
			t.Fatalf("θ=%f: y=%f != 0", θ, R[1])
		}
		if !floats.EqualWithinAbs(Norm(R), 12, 1e-12) {
			t.Fatalf("θ=%f: |R|=%f is not on the circle", θ, Norm(R))
		}
	}
}

func TestComputePositionEllipse(t *testing.T) {
	for _, tc := range []struct {
		θ   float64
		exp []float64
	}{
		{0, []float64{50, 0, 0}},
		{math.Pi / 2, []float64{0, 0, 40}},
		{math.Pi, []float64{-50, 0, 0}},
		{3 * math.Pi / 2, []float64{0, 0, -40}},
	} {
		if R := ComputePosition(tc.θ, 50, 40, nil); !vectorsEqual(R, tc.exp, 1e-9) {
			t.Fatalf("θ=%f: got %v want %v", tc.θ, R, tc.exp)
		}
	}
	// Offset by the parent.
	R := ComputePosition(math.Pi/2, 4, 4, []float64{10, 1, -3})
	if !vectorsEqual(R, []float64{10, 1, 1}, 1e-9) {
		t.Fatalf("offset position %v", R)
	}
}

func TestBodyPeriodicity(t *testing.T) {
	b, err := NewBody(BodySpec{Name: "Earth", Radius: 1, SemiMajorAxis: 34, SemiMinorAxis: 31, SpeedFactor: 1}, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	start := b.Position()
	for i := 0; i < TicksPerYear; i++ {
		b.Advance()
	}
	if !floats.EqualWithinAbs(b.PhaseAngle(), 2*math.Pi, 1e-9) {
		t.Fatalf("θ after one year: %f", b.PhaseAngle())
	}
	if !vectorsEqual(b.Position(), start, 1e-6) {
		t.Fatalf("position after one year %v != %v", b.Position(), start)
	}
}

func TestBodySpin(t *testing.T) {
	b, err := NewBody(BodySpec{Name: "Sun", Radius: 8, RotationSpeed: 0.001}, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Fixed() {
		t.Fatal("sun should be fixed")
	}
	for i := 0; i < 10; i++ {
		b.Advance()
	}
	if !floats.EqualWithinAbs(b.RotationY(), 0.01, 1e-12) {
		t.Fatalf("spin=%f", b.RotationY())
	}
	if !vectorsEqual(b.Position(), []float64{0, 0, 0}, 0) {
		t.Fatalf("fixed body moved to %v", b.Position())
	}
}

func TestTidalLock(t *testing.T) {
	earth, _ := NewBody(BodySpec{Name: "Earth", Radius: 6}, nil, 1)
	moon, err := NewBody(BodySpec{Name: "Moon", Radius: 1, SemiMajorAxis: 384, SemiMinorAxis: 384, SpeedFactor: 3, RotationSpeed: 0.5, Parent: "Earth", TidalLock: true}, earth, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 42; i++ {
		earth.Advance()
		moon.Advance()
		if moon.RotationY() != -moon.PhaseAngle() {
			t.Fatalf("tick %d: rotY=%f θ=%f", i, moon.RotationY(), moon.PhaseAngle())
		}
	}
}

func TestRadiusFromRealRadius(t *testing.T) {
	b, err := NewBody(BodySpec{Name: "Jupiter", RealRadius: 69911, SemiMajorAxis: 64, SemiMinorAxis: 58}, nil, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(b.Radius, math.Log(69911)*0.5, 1e-12) {
		t.Fatalf("radius=%f", b.Radius)
	}
}

func TestBodyConfigErrors(t *testing.T) {
	earth, _ := NewBody(BodySpec{Name: "Earth", Radius: 6}, nil, 1)
	for _, tc := range []struct {
		spec   BodySpec
		parent *Body
		field  string
	}{
		{BodySpec{Name: " ", Radius: 1}, nil, "name"},
		{BodySpec{Name: "A", Radius: -1}, nil, "radius"},
		{BodySpec{Name: "A", Radius: 1, SemiMajorAxis: -2, SemiMinorAxis: 1}, nil, "semi_major_axis"},
		{BodySpec{Name: "A", Radius: 1, SemiMajorAxis: 2, SemiMinorAxis: -1}, nil, "semi_minor_axis"},
		{BodySpec{Name: "A", Radius: 1, SemiMajorAxis: 2}, nil, ""},
		{BodySpec{Name: "A", Radius: 1, SemiMinorAxis: 2}, nil, ""},
		{BodySpec{Name: "A", Radius: 1, SpeedFactor: math.NaN()}, nil, "speed_factor"},
		{BodySpec{Name: "A", Radius: math.Inf(1)}, nil, "radius"},
		{BodySpec{Name: "A"}, nil, "real_radius"},
		{BodySpec{Name: "A", Radius: 1, Parent: "A"}, nil, "parent"},
		{BodySpec{Name: "A", Radius: 1, Parent: "Mars"}, nil, "parent"},
		{BodySpec{Name: "A", Radius: 1, Parent: "Mars"}, earth, "parent"},
	} {
		_, err := NewBody(tc.spec, tc.parent, 1)
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("%+v: expected a ConfigError, got %v", tc.spec, err)
		}
		if cerr.Field != tc.field {
			t.Fatalf("%+v: field %q != %q (%s)", tc.spec, cerr.Field, tc.field, err)
		}
	}
	if _, err := NewBody(BodySpec{Name: "A", RealRadius: 10}, nil, 0); err == nil {
		t.Fatal("zero scaling accepted")
	}
}

func TestPath(t *testing.T) {
	b, _ := NewBody(BodySpec{Name: "A", Radius: 1, SemiMajorAxis: 5, SemiMinorAxis: 5, SpeedFactor: 1}, nil, 1)
	pts := b.Path(36)
	if len(pts) != 36 {
		t.Fatalf("got %d points", len(pts))
	}
	for _, p := range pts {
		if !floats.EqualWithinAbs(Norm(p), 5, 1e-12) {
			t.Fatalf("%v is not on the orbit", p)
		}
	}
	if b.Path(0) != nil {
		t.Fatal("empty path should be nil")
	}
}

func TestPositionPeriodic(t *testing.T) {
	for θ := 0.0; θ < 2*math.Pi; θ += 0.05 {
		if !vectorsEqual(ComputePosition(θ, 50, 40, nil), ComputePosition(θ+2*math.Pi, 50, 40, nil), 1e-9) {
			t.Fatalf("θ=%f is not periodic", θ)
		}
	}
}

func TestSelfRotationMonotone(t *testing.T) {
	b, _ := NewBody(BodySpec{Name: "Venus", Radius: 3, SemiMajorAxis: 24, SemiMinorAxis: 22, SpeedFactor: 1.6, RotationSpeed: -0.002}, nil, 1)
	prev := b.SelfRotation()
	for i := 0; i < 5*TicksPerYear; i++ {
		b.Advance()
		if b.SelfRotation() >= prev {
			t.Fatalf("tick %d: spin went from %f to %f", i, prev, b.SelfRotation())
		}
		prev = b.SelfRotation()
	}
	if !floats.EqualWithinAbs(prev, -0.002*5*TicksPerYear, 1e-9) {
		t.Fatalf("spin clamped at %f", prev)
	}
}
