package orrery

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gonum/floats"
)

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParseSeedMode(t *testing.T) {
	for s, exp := range map[string]SeedMode{"": SeedZero, "zero": SeedZero, "Random": SeedRandom, " epoch ": SeedEpoch} {
		mode, err := ParseSeedMode(s)
		if err != nil {
			t.Fatal(err)
		}
		if mode != exp {
			t.Fatalf("%q parsed as %s", s, mode)
		}
	}
	if _, err := ParseSeedMode("sideways"); err == nil {
		t.Fatal("unknown mode accepted")
	}
	if SeedEpoch.String() != "epoch" {
		t.Fatal("wrong name")
	}
}

func TestEpochPhase(t *testing.T) {
	θ, ok := EpochPhase("Earth", j2000)
	if !ok {
		t.Fatal("Earth has no elements")
	}
	if !floats.EqualWithinAbs(θ, Deg2rad(100.46457166), 1e-9) {
		t.Fatalf("Earth at J2000: %f", θ)
	}
	θ, _ = EpochPhase("Mars", j2000)
	if !floats.EqualWithinAbs(Rad2deg(θ), 360-4.55343205, 1e-6) {
		t.Fatalf("Mars at J2000: %f deg", Rad2deg(θ))
	}
	if _, ok := EpochPhase("Asteroid 1", j2000); ok {
		t.Fatal("asteroids have no elements")
	}
	for _, dt := range []time.Time{j2000, j2000.AddDate(-150, 0, 0), j2000.AddDate(37, 3, 0)} {
		for name := range meanLongitudes {
			θ, _ := EpochPhase(name, dt)
			if θ < 0 || θ >= 2*math.Pi {
				t.Fatalf("%s at %s: θ=%f out of range", name, dt, θ)
			}
		}
	}
	// The Earth goes around once per Julian year.
	next, _ := EpochPhase("Earth", j2000.Add(time.Duration(365.25*24)*time.Hour))
	start, _ := EpochPhase("Earth", j2000)
	if !sameAngle(next, start, 1e-3) {
		t.Fatalf("one year later: %f != %f", next, start)
	}
}

func TestSeedRandom(t *testing.T) {
	conf := EngineConfig{Seed: SeedRandom, RandSeed: 42}
	e1 := newStartedEngine(t, SolarSystem, conf)
	e2 := newStartedEngine(t, SolarSystem, conf)
	for _, b := range e1.Bodies() {
		θ := b.PhaseAngle()
		if θ != e2.Body(b.Name).PhaseAngle() {
			t.Fatalf("%s: the same seed gave different phases", b.Name)
		}
		if θ < 0 || θ >= 2*math.Pi {
			t.Fatalf("%s: θ=%f", b.Name, θ)
		}
		spec, _ := SolarSystem.Spec(b.Name)
		if !spec.RandomPhase && θ != 0 {
			t.Fatalf("%s should start at zero, got %f", b.Name, θ)
		}
	}
	// Tables without random flags randomize every orbiting body.
	e := newStartedEngine(t, InnerSystem, conf)
	if e.Body("Sun").PhaseAngle() != 0 {
		t.Fatal("the fixed sun got a phase")
	}
	if e.Body("Earth").PhaseAngle() == 0 && e.Body("Mars").PhaseAngle() == 0 {
		t.Fatal("no planet was randomized")
	}
}

func TestSeedEpoch(t *testing.T) {
	e := newStartedEngine(t, SolarSystem, EngineConfig{Seed: SeedEpoch, Epoch: j2000})
	for _, b := range e.Bodies() {
		exp, _ := EpochPhase(b.Name, j2000)
		if b.PhaseAngle() != exp {
			t.Fatalf("%s: θ=%f want %f", b.Name, b.PhaseAngle(), exp)
		}
		if !vectorsEqual(b.Position(), b.ComputePosition(), 0) {
			t.Fatalf("%s: position not recomputed", b.Name)
		}
	}
}

func TestSeedRandomWithAsteroids(t *testing.T) {
	e := newStartedEngine(t, InnerSystem, EngineConfig{Seed: SeedRandom, RandSeed: 42, Asteroids: AsteroidBelt{Count: 5}})
	if e.Body("Earth").PhaseAngle() == 0 && e.Body("Mars").PhaseAngle() == 0 {
		t.Fatal("the belt stopped the planets from being randomized")
	}
	asteroids := 0
	for _, b := range e.Bodies() {
		if !strings.HasPrefix(b.Name, "Asteroid") {
			continue
		}
		asteroids++
		if θ := b.PhaseAngle(); θ < 0 || θ >= 2*math.Pi {
			t.Fatalf("%s: θ=%f", b.Name, θ)
		}
	}
	if asteroids != 5 {
		t.Fatalf("%d asteroids", asteroids)
	}
}

func TestSeedEpochWithAsteroids(t *testing.T) {
	e := newStartedEngine(t, SolarSystem, EngineConfig{Seed: SeedEpoch, Epoch: j2000, RandSeed: 7, Asteroids: AsteroidBelt{Count: 5}})
	spread := false
	for _, b := range e.Bodies() {
		if _, ok := SolarSystem.Spec(b.Name); ok {
			exp, _ := EpochPhase(b.Name, j2000)
			if b.PhaseAngle() != exp {
				t.Fatalf("%s: θ=%f want %f", b.Name, b.PhaseAngle(), exp)
			}
			continue
		}
		if θ := b.PhaseAngle(); θ < 0 || θ >= 2*math.Pi {
			t.Fatalf("%s: θ=%f", b.Name, θ)
		} else if θ != 0 {
			spread = true
		}
	}
	if !spread {
		t.Fatal("every asteroid starts at zero")
	}
}
