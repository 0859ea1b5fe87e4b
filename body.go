package orrery

import (
	"fmt"
	"math"
)

// ConfigError is returned when a body cannot be built from its table row.
type ConfigError struct {
	Body   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("body %q: %s", e.Body, e.Reason)
	}
	return fmt.Sprintf("body %q: %s %s", e.Body, e.Field, e.Reason)
}

// Body is one animated object: the sun, a planet, a moon or an asteroid.
// All angles are in radians and all rates are per tick.
type Body struct {
	Name      string
	Texture   string
	Radius    float64
	Parent    *Body
	TidalLock bool // RotationY follows -θ instead of the self-rotation.
	a, b      float64
	ω         float64 // angular speed
	θ         float64 // phase angle
	spinRate  float64
	spin      float64
	pos       []float64
	depth     int
}

// NewBody returns a new body from its table row. The parent must already be built
// when the row names one. Radii are derived as log(RealRadius)*scaling unless the
// row sets a literal Radius.
func NewBody(spec BodySpec, parent *Body, scaling float64) (*Body, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if spec.Parent != "" && parent == nil {
		return nil, &ConfigError{spec.Name, "parent", fmt.Sprintf("%q is not defined", spec.Parent)}
	}
	if parent != nil && spec.Parent != parent.Name {
		return nil, &ConfigError{spec.Name, "parent", fmt.Sprintf("got %q, row names %q", parent.Name, spec.Parent)}
	}
	radius := spec.Radius
	if radius == 0 {
		if spec.RealRadius <= 0 {
			return nil, &ConfigError{spec.Name, "real_radius", "must be positive when no literal radius is set"}
		}
		if scaling <= 0 || math.IsNaN(scaling) || math.IsInf(scaling, 0) {
			return nil, &ConfigError{spec.Name, "scaling", "must be a positive finite number"}
		}
		radius = math.Log(spec.RealRadius) * scaling
	}
	b := &Body{
		Name:      spec.Name,
		Texture:   spec.Texture,
		Radius:    radius,
		Parent:    parent,
		TidalLock: spec.TidalLock,
		a:         spec.SemiMajorAxis,
		b:         spec.SemiMinorAxis,
		ω:         spec.AngularSpeed(),
		spinRate:  spec.RotationSpeed,
	}
	if parent != nil {
		b.depth = parent.depth + 1
	}
	b.pos = b.ComputePosition()
	return b, nil
}

// ComputePosition returns the position on the ellipse of half-widths a (along x)
// and b (along z) at phase θ. Orbits are coplanar so y is always zero.
// A nil parent means the ellipse is centered on the origin.
func ComputePosition(θ, a, b float64, parent []float64) []float64 {
	sθ, cθ := math.Sincos(θ)
	R := []float64{a * cθ, 0, b * sθ}
	if parent != nil {
		for i := 0; i < 3; i++ {
			R[i] += parent[i]
		}
	}
	return R
}

// ComputePosition returns the position of this body from its current phase angle
// and the current position of its parent.
func (b *Body) ComputePosition() []float64 {
	var parent []float64
	if b.Parent != nil {
		parent = b.Parent.pos
	}
	return ComputePosition(b.θ, b.a, b.b, parent)
}

// Advance moves this body by one tick. The parent must have been advanced first
// within the same tick.
func (b *Body) Advance() {
	b.θ += b.ω
	b.spin += b.spinRate
	b.pos = b.ComputePosition()
}

// Path samples n points of the orbit, offset by the parent's current position.
func (b *Body) Path(n int) [][]float64 {
	if n <= 0 {
		return nil
	}
	var parent []float64
	if b.Parent != nil {
		parent = b.Parent.pos
	}
	pts := make([][]float64, n)
	for i := 0; i < n; i++ {
		pts[i] = ComputePosition(2*math.Pi*float64(i)/float64(n), b.a, b.b, parent)
	}
	return pts
}

// SetPhaseAngle overrides the phase angle and recomputes the position.
func (b *Body) SetPhaseAngle(θ float64) {
	b.θ = θ
	b.pos = b.ComputePosition()
}

// Position returns a copy of the last computed position.
func (b *Body) Position() []float64 {
	return []float64{b.pos[0], b.pos[1], b.pos[2]}
}

// PhaseAngle returns θ. It is never wrapped.
func (b *Body) PhaseAngle() float64 {
	return b.θ
}

// SelfRotation returns the accumulated spin around the body's own axis.
func (b *Body) SelfRotation() float64 {
	return b.spin
}

// RotationY is the spin angle handed to the renderer.
func (b *Body) RotationY() float64 {
	if b.TidalLock {
		return -b.θ
	}
	return b.spin
}

// SemiMajorAxis returns the half-width along x.
func (b *Body) SemiMajorAxis() float64 {
	return b.a
}

// SemiMinorAxis returns the half-width along z.
func (b *Body) SemiMinorAxis() float64 {
	return b.b
}

// AngularSpeed returns the phase advance per tick.
func (b *Body) AngularSpeed() float64 {
	return b.ω
}

// SelfRotationSpeed returns the spin advance per tick.
func (b *Body) SelfRotationSpeed() float64 {
	return b.spinRate
}

// Fixed returns whether this body sits on its parent (or the origin).
func (b *Body) Fixed() bool {
	return b.a == 0 && b.b == 0
}

// State returns what the renderer needs from this body.
func (b *Body) State() BodyState {
	return BodyState{b.Name, b.Texture, b.Radius, [3]float64{b.pos[0], b.pos[1], b.pos[2]}, b.RotationY()}
}

func (b *Body) String() string {
	return fmt.Sprintf("%s θ=%.4f R=[%.3f %.3f %.3f]", b.Name, b.θ, b.pos[0], b.pos[1], b.pos[2])
}
