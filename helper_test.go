package orrery

import (
	"math"

	"github.com/gonum/floats"
)

func vectorsEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floats.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

// distance returns the distance between two 3x1 vectors.
func distance(a, b []float64) float64 {
	return Norm([]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]})
}

// sameAngle returns whether two angles designate the same direction, within tol radians.
func sameAngle(a, b, tol float64) bool {
	sa, ca := math.Sincos(a)
	sb, cb := math.Sincos(b)
	return floats.EqualWithinAbs(sa, sb, tol) && floats.EqualWithinAbs(ca, cb, tol)
}
