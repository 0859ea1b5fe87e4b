package orrery

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// AsteroidBelt configures a set of randomly parameterized asteroids.
// Asteroids neither spin nor have a parent.
type AsteroidBelt struct {
	Count      int      `mapstructure:"count"`
	Center     float64  `mapstructure:"center"`     // Mean semi-major axis.
	Spread     float64  `mapstructure:"spread"`     // Standard deviation of the semi-major axis.
	Flattening float64  `mapstructure:"flattening"` // Mean of 1-b/a.
	Radius     float64  `mapstructure:"radius"`
	EarthAxis  float64  `mapstructure:"earth_axis"` // Semi-major axis with a speed factor of 1.
	Names      []string `mapstructure:"names"`      // Optional names, e.g. from the NEO feed.
}

// WithDefaults fills the unset fields from the table: the belt sits between Mars and
// Jupiter when both exist, else just outside the widest orbit.
func (ab AsteroidBelt) WithDefaults(t Table) AsteroidBelt {
	if ab.Center == 0 {
		mars, okM := t.Spec("Mars")
		jupiter, okJ := t.Spec("Jupiter")
		if okM && okJ {
			ab.Center = (mars.SemiMajorAxis + jupiter.SemiMajorAxis) / 2
		} else {
			for _, s := range t.Bodies {
				if s.Parent == "" {
					ab.Center = math.Max(ab.Center, s.SemiMajorAxis)
				}
			}
			ab.Center *= 1.25
		}
	}
	if ab.Spread == 0 {
		ab.Spread = ab.Center * 0.05
	}
	if ab.Flattening == 0 {
		ab.Flattening = 0.08
	}
	if ab.EarthAxis == 0 {
		if earth, ok := t.Spec("Earth"); ok && earth.Parent == "" && earth.SemiMajorAxis > 0 {
			ab.EarthAxis = earth.SemiMajorAxis
		}
	}
	return ab
}

// Generate draws Count table rows. The semi-major axis and the axis ratio are drawn
// from a bivariate normal distribution; the speed factor follows (EarthAxis/a)^1.5.
func (ab AsteroidBelt) Generate(src *rand.Rand) ([]BodySpec, error) {
	if ab.Count <= 0 {
		return nil, nil
	}
	if ab.Center <= 0 {
		return nil, errors.New("asteroid belt center must be positive")
	}
	if ab.Spread < 0 || ab.Flattening < 0 || ab.Flattening >= 1 {
		return nil, fmt.Errorf("invalid asteroid belt spread %f or flattening %f", ab.Spread, ab.Flattening)
	}
	earthAxis := ab.EarthAxis
	if earthAxis <= 0 {
		earthAxis = ab.Center
	}
	radius := ab.Radius
	if radius <= 0 {
		radius = 0.3
	}
	σa := math.Max(ab.Spread*ab.Spread, 1e-12)
	σr := math.Max(math.Pow(ab.Flattening/2, 2), 1e-12)
	dist, ok := distmv.NewNormal([]float64{ab.Center, 1 - ab.Flattening}, mat64.NewSymDense(2, []float64{σa, 0, 0, σr}), src)
	if !ok {
		return nil, errors.New("asteroid belt covariance is not positive definite")
	}
	used := make(map[string]bool, ab.Count)
	specs := make([]BodySpec, ab.Count)
	for i := range specs {
		draw := dist.Rand(nil)
		a := math.Max(draw[0], 2*radius)
		ratio := math.Min(math.Max(draw[1], 0.5), 1)
		name := fmt.Sprintf("Asteroid %d", i+1)
		if i < len(ab.Names) && ab.Names[i] != "" && !used[ab.Names[i]] {
			name = ab.Names[i]
		}
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("Asteroid %d (%d)", i+1, n)
		}
		used[name] = true
		specs[i] = BodySpec{
			Name:          name,
			Radius:        radius,
			SemiMajorAxis: a,
			SemiMinorAxis: a * ratio,
			SpeedFactor:   math.Pow(earthAxis/a, 1.5),
			RandomPhase:   true,
		}
	}
	return specs, nil
}
