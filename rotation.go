package orrery

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// Camera projects scene positions on a screen plane. At zero yaw and tilt the view is
// top-down: x to the right and z downward. Yaw turns the scene about its vertical axis (y)
// and Tilt leans the orbital plane away from the viewer.
type Camera struct {
	Yaw, Tilt float64
}

// Project returns the screen coordinates (u to the right, v downward) and the depth of R.
func (c Camera) Project(R []float64) (u, v, depth float64) {
	var m mat64.Dense
	m.Mul(R1(c.Tilt), R3(c.Yaw))
	P := MxV33(&m, []float64{R[0], R[2], R[1]})
	return P[0], P[1], P[2]
}
