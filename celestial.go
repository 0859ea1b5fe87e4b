package orrery

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// FrameRate is the nominal number of ticks per second.
	FrameRate = 60
	// BaseSpeed is the angular speed of the Earth: one revolution every 60 seconds at 60 Hz.
	BaseSpeed = 2 * math.Pi * (1. / 60) * (1. / 60)
	// TicksPerYear is the number of ticks in one revolution at BaseSpeed.
	TicksPerYear = 60 * 60
)

// BodySpec is one row of a body table.
type BodySpec struct {
	Name          string  `mapstructure:"name" json:"name"`
	Texture       string  `mapstructure:"texture" json:"texture,omitempty"`
	Radius        float64 `mapstructure:"radius" json:"radius,omitempty"`           // Literal visual radius (sun, moon).
	RealRadius    float64 `mapstructure:"real_radius" json:"realRadius,omitempty"` // Mean radius in km, used when Radius is zero.
	SemiMajorAxis float64 `mapstructure:"semi_major_axis" json:"semiMajorAxis"`
	SemiMinorAxis float64 `mapstructure:"semi_minor_axis" json:"semiMinorAxis"`
	SpeedFactor   float64 `mapstructure:"speed_factor" json:"speedFactor"` // Multiple of BaseSpeed.
	RotationSpeed float64 `mapstructure:"rotation_speed" json:"rotationSpeed"`
	Parent        string  `mapstructure:"parent" json:"parent,omitempty"`
	TidalLock     bool    `mapstructure:"tidal_lock" json:"tidalLock,omitempty"`
	RandomPhase   bool    `mapstructure:"random_phase" json:"randomPhase,omitempty"`
}

// AngularSpeed returns the phase advance per tick of this row.
func (s BodySpec) AngularSpeed() float64 {
	return BaseSpeed * s.SpeedFactor
}

func (s BodySpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ConfigError{s.Name, "name", "is empty"}
	}
	for _, f := range []struct {
		field string
		val   float64
	}{{"radius", s.Radius}, {"real_radius", s.RealRadius}, {"semi_major_axis", s.SemiMajorAxis},
		{"semi_minor_axis", s.SemiMinorAxis}, {"speed_factor", s.SpeedFactor}, {"rotation_speed", s.RotationSpeed}} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return &ConfigError{s.Name, f.field, "is not finite"}
		}
	}
	if s.Radius < 0 {
		return &ConfigError{s.Name, "radius", "is negative"}
	}
	if s.SemiMajorAxis < 0 {
		return &ConfigError{s.Name, "semi_major_axis", "is negative"}
	}
	if s.SemiMinorAxis < 0 {
		return &ConfigError{s.Name, "semi_minor_axis", "is negative"}
	}
	if (s.SemiMajorAxis == 0) != (s.SemiMinorAxis == 0) {
		return &ConfigError{s.Name, "", "degenerate orbit: both axes must be zero or both positive"}
	}
	if s.Parent == s.Name {
		return &ConfigError{s.Name, "parent", "is the body itself"}
	}
	return nil
}

// Table is the static configuration of one view.
type Table struct {
	Name    string     `json:"name"`
	Scaling float64    `json:"scaling"` // Radius = log(RealRadius) * Scaling
	Bodies  []BodySpec `json:"bodies"`
}

// Build validates the table and returns its bodies ordered parents first,
// keeping table order among bodies of the same depth.
func (t Table) Build() ([]*Body, error) {
	rows := make(map[string]int, len(t.Bodies))
	for i, spec := range t.Bodies {
		if _, dup := rows[spec.Name]; dup {
			return nil, &ConfigError{spec.Name, "name", "is defined twice"}
		}
		rows[spec.Name] = i
	}
	depths := make([]int, len(t.Bodies))
	for i, spec := range t.Bodies {
		cur := spec
		for cur.Parent != "" {
			j, ok := rows[cur.Parent]
			if !ok {
				return nil, &ConfigError{cur.Name, "parent", fmt.Sprintf("%q is not defined", cur.Parent)}
			}
			depths[i]++
			if depths[i] > len(t.Bodies) {
				return nil, &ConfigError{spec.Name, "parent", "hierarchy has a cycle"}
			}
			cur = t.Bodies[j]
		}
	}
	order := make([]int, len(t.Bodies))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return depths[order[x]] < depths[order[y]] })

	built := make(map[string]*Body, len(t.Bodies))
	bodies := make([]*Body, 0, len(t.Bodies))
	for _, i := range order {
		spec := t.Bodies[i]
		b, err := NewBody(spec, built[spec.Parent], t.Scaling)
		if err != nil {
			return nil, err
		}
		built[spec.Name] = b
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// Spec returns the row of the named body.
func (t Table) Spec(name string) (BodySpec, bool) {
	for _, s := range t.Bodies {
		if s.Name == name {
			return s, true
		}
	}
	return BodySpec{}, false
}

// TableFromString returns a built-in table from its name.
func TableFromString(name string) (Table, error) {
	switch strings.ToLower(name) {
	case "inner":
		return InnerSystem, nil
	case "solar":
		return SolarSystem, nil
	case "earthmoon", "earth-moon":
		return EarthMoon, nil
	default:
		return Table{}, fmt.Errorf("undefined table '%s'", name)
	}
}

// Tables lists the built-in tables.
func Tables() []Table {
	return []Table{InnerSystem, SolarSystem, EarthMoon}
}

/* Definitions */

// InnerSystem is the Sun and the four rocky planets on circles.
var InnerSystem = Table{"inner", 1, []BodySpec{
	{Name: "Sun", Texture: "sun.jpeg", Radius: 8, RotationSpeed: 0.001},
	{Name: "Mercury", Texture: "mercury.png", Radius: 2, SemiMajorAxis: 16, SemiMinorAxis: 16, SpeedFactor: 4, RotationSpeed: 0.01},
	{Name: "Venus", Texture: "venus.jpeg", Radius: 3, SemiMajorAxis: 32, SemiMinorAxis: 32, SpeedFactor: 2, RotationSpeed: 0.01},
	{Name: "Earth", Texture: "earth.jpeg", Radius: 4, SemiMajorAxis: 48, SemiMinorAxis: 48, SpeedFactor: 1, RotationSpeed: 0.01},
	{Name: "Mars", Texture: "mars.jpeg", Radius: 3, SemiMajorAxis: 64, SemiMinorAxis: 64, SpeedFactor: 0.5, RotationSpeed: 0.01},
}}

// SolarSystem is the Sun, the eight planets and the Moon on slightly squashed ellipses.
// Venus spins backwards.
var SolarSystem = Table{"solar", 0.5, []BodySpec{
	{Name: "Sun", Texture: "sun.jpeg", Radius: 8, RotationSpeed: 0.001},
	{Name: "Mercury", Texture: "mercury.png", RealRadius: 2439.7, SemiMajorAxis: 16, SemiMinorAxis: 14, SpeedFactor: 4, RotationSpeed: 0.004, RandomPhase: true},
	{Name: "Venus", Texture: "venus.jpeg", RealRadius: 6051.8, SemiMajorAxis: 24, SemiMinorAxis: 22, SpeedFactor: 1.6, RotationSpeed: -0.002, RandomPhase: true},
	{Name: "Earth", Texture: "earth.jpeg", RealRadius: 6371, SemiMajorAxis: 34, SemiMinorAxis: 31, SpeedFactor: 1, RotationSpeed: 0.01, RandomPhase: true},
	{Name: "Moon", Texture: "moon.png", Radius: 0.6, SemiMajorAxis: 4, SemiMinorAxis: 4, SpeedFactor: 12, Parent: "Earth", TidalLock: true},
	{Name: "Mars", Texture: "mars.jpeg", RealRadius: 3389.5, SemiMajorAxis: 44, SemiMinorAxis: 40, SpeedFactor: 0.53, RotationSpeed: 0.01, RandomPhase: true},
	{Name: "Jupiter", Texture: "jupiter.jpeg", RealRadius: 69911, SemiMajorAxis: 64, SemiMinorAxis: 58, SpeedFactor: 0.084, RotationSpeed: 0.024, RandomPhase: true},
	{Name: "Saturn", Texture: "saturn.jpeg", RealRadius: 58232, SemiMajorAxis: 80, SemiMinorAxis: 73, SpeedFactor: 0.034, RotationSpeed: 0.022, RandomPhase: true},
	{Name: "Uranus", Texture: "uranus.jpeg", RealRadius: 25362, SemiMajorAxis: 94, SemiMinorAxis: 86, SpeedFactor: 0.02, RotationSpeed: -0.014, RandomPhase: true},
	{Name: "Neptune", Texture: "neptune.jpeg", RealRadius: 24622, SemiMajorAxis: 106, SemiMinorAxis: 97, SpeedFactor: 0.0125, RotationSpeed: 0.015, RandomPhase: true},
}}

// EarthMoon is the Earth at the origin with a tidally locked Moon.
var EarthMoon = Table{"earthmoon", 1, []BodySpec{
	{Name: "Earth", Texture: "earth.jpeg", Radius: 6.3781, RotationSpeed: 0.01},
	{Name: "Moon", Texture: "moon.png", Radius: 1.737, SemiMajorAxis: 384, SemiMinorAxis: 384, SpeedFactor: 3, Parent: "Earth", TidalLock: true},
}}
