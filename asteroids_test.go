package orrery

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonum/floats"
)

func TestAsteroidBeltGenerate(t *testing.T) {
	belt := AsteroidBelt{Count: 200, Center: 54, Spread: 3, Flattening: 0.08, EarthAxis: 34}
	specs, err := belt.Generate(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 200 {
		t.Fatalf("generated %d asteroids", len(specs))
	}
	names := make(map[string]bool)
	var sum float64
	for _, s := range specs {
		if names[s.Name] {
			t.Fatalf("%s generated twice", s.Name)
		}
		names[s.Name] = true
		if s.SemiMinorAxis > s.SemiMajorAxis || s.SemiMinorAxis < s.SemiMajorAxis/2 {
			t.Fatalf("%s: a=%f b=%f", s.Name, s.SemiMajorAxis, s.SemiMinorAxis)
		}
		if !floats.EqualWithinAbs(s.SpeedFactor, math.Pow(34/s.SemiMajorAxis, 1.5), 1e-12) {
			t.Fatalf("%s: speed factor %f", s.Name, s.SpeedFactor)
		}
		if !s.RandomPhase || s.Parent != "" || s.RotationSpeed != 0 || s.Radius != 0.3 {
			t.Fatalf("unexpected row %+v", s)
		}
		sum += s.SemiMajorAxis
	}
	if mean := sum / 200; math.Abs(mean-54) > 1 {
		t.Fatalf("mean semi-major axis %f", mean)
	}
	if _, err := (Table{"belt", 1, specs}).Build(); err != nil {
		t.Fatal(err)
	}
}

func TestAsteroidBeltNames(t *testing.T) {
	belt := AsteroidBelt{Count: 4, Center: 10, Names: []string{"433 Eros", "", "433 Eros"}}
	specs, err := belt.Generate(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	for i, exp := range []string{"433 Eros", "Asteroid 2", "Asteroid 3", "Asteroid 4"} {
		if specs[i].Name != exp {
			t.Fatalf("asteroid %d named %q, want %q", i, specs[i].Name, exp)
		}
	}
}

func TestAsteroidBeltErrors(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	if specs, err := (AsteroidBelt{}).Generate(src); err != nil || specs != nil {
		t.Fatalf("empty belt: %v %v", specs, err)
	}
	if _, err := (AsteroidBelt{Count: 1}).Generate(src); err == nil {
		t.Fatal("zero center accepted")
	}
	if _, err := (AsteroidBelt{Count: 1, Center: 10, Flattening: 1}).Generate(src); err == nil {
		t.Fatal("flat belt accepted")
	}
	if _, err := NewEngine(EarthMoon, EngineConfig{Asteroids: AsteroidBelt{Count: 3}}); err == nil {
		t.Fatal("a belt around nothing was accepted")
	}
}

func TestAsteroidBeltDefaults(t *testing.T) {
	belt := AsteroidBelt{Count: 1}.WithDefaults(SolarSystem)
	if belt.Center != 54 || belt.EarthAxis != 34 || belt.Flattening != 0.08 {
		t.Fatalf("solar defaults %+v", belt)
	}
	if !floats.EqualWithinAbs(belt.Spread, 2.7, 1e-12) {
		t.Fatalf("spread %f", belt.Spread)
	}
	belt = AsteroidBelt{Count: 1}.WithDefaults(InnerSystem)
	if belt.Center != 80 || belt.EarthAxis != 48 {
		t.Fatalf("inner defaults %+v", belt)
	}
	belt = AsteroidBelt{Center: 12, Spread: 1}.WithDefaults(InnerSystem)
	if belt.Center != 12 || belt.Spread != 1 {
		t.Fatalf("explicit values overridden: %+v", belt)
	}
}
