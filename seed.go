package orrery

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

// SeedMode defines how initial phase angles are chosen when the engine starts.
type SeedMode uint8

const (
	// SeedZero starts every body at θ=0.
	SeedZero SeedMode = iota
	// SeedRandom draws θ uniformly in [0, 2π).
	SeedRandom
	// SeedEpoch uses the mean longitude of the planet at the configured epoch.
	SeedEpoch
)

func (m SeedMode) String() string {
	switch m {
	case SeedZero:
		return "zero"
	case SeedRandom:
		return "random"
	case SeedEpoch:
		return "epoch"
	}
	return fmt.Sprintf("SeedMode(%d)", m)
}

// ParseSeedMode returns the seed mode from its name.
func ParseSeedMode(s string) (SeedMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return SeedZero, nil
	case "random":
		return SeedRandom, nil
	case "epoch":
		return SeedEpoch, nil
	}
	return SeedZero, fmt.Errorf("unknown seed mode '%s'", s)
}

// meanLongitudes are the J2000 mean longitudes (degrees) and their rates (degrees per Julian century).
// Planets are heliocentric, the Moon is geocentric.
var meanLongitudes = map[string][2]float64{
	"Mercury": {252.25032350, 149472.67411175},
	"Venus":   {181.97909950, 58517.81538729},
	"Earth":   {100.46457166, 35999.37244981},
	"Moon":    {218.3164477, 481267.88123421},
	"Mars":    {-4.55343205, 19140.30268499},
	"Jupiter": {34.39644051, 3034.74612775},
	"Saturn":  {49.95424423, 1222.49362201},
	"Uranus":  {313.23810451, 428.48202785},
	"Neptune": {-55.12002969, 218.45945325},
}

// EpochPhase returns the mean longitude in radians, in [0, 2π), of the named body at dt.
// The second return is false for bodies without known elements.
func EpochPhase(name string, dt time.Time) (float64, bool) {
	elts, ok := meanLongitudes[name]
	if !ok {
		return 0, false
	}
	T := (julian.TimeToJD(dt.UTC()) - base.J2000) / base.JulianCentury
	L := math.Mod(elts[0]+elts[1]*T, 360)
	if L < 0 {
		L += 360
	}
	return Deg2rad(L), true
}

// seedPhases sets the initial phase angles of bodies, which must be ordered parents first.
// SeedRandom randomizes the flagged bodies, or every orbiting body when all is set.
// SeedEpoch falls back to a random phase for flagged bodies without mean longitude elements.
func seedPhases(bodies []*Body, mode SeedMode, flagged map[string]bool, all bool, epoch time.Time, src *rand.Rand) {
	for _, b := range bodies {
		θ := 0.0
		switch mode {
		case SeedRandom:
			if !b.Fixed() && (all || flagged[b.Name]) {
				θ = src.Float64() * 2 * math.Pi
			}
		case SeedEpoch:
			var ok bool
			if θ, ok = EpochPhase(b.Name, epoch); !ok && !b.Fixed() && flagged[b.Name] {
				θ = src.Float64() * 2 * math.Pi
			}
		}
		b.SetPhaseAngle(θ)
	}
}
