package utils

import (
	"math"
)

// SolveQuadratic returns the real roots of a*t^2 + 2*k*t + c = 0 in
// ascending order. A tangent (double) root is reported as no roots, the line
// touches the surface without crossing it.
func SolveQuadratic(a, k, c float64) (roots [2]float64, n int) {
	var (
		disc = k*k - a*c
	)
	if a == 0 {
		if k == 0 {
			return
		}
		roots[0] = -c / (2 * k)
		n = 1
		return
	}
	if disc <= 0 {
		return
	}
	var (
		sq = math.Sqrt(disc)
		q  float64
	)
	// Numerically stable form avoids cancellation in the smaller root
	if k >= 0 {
		q = -(k + sq)
	} else {
		q = -(k - sq)
	}
	t1, t2 := q/a, c/q
	if q == 0 {
		t2 = t1
	}
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	roots[0], roots[1] = t1, t2
	n = 2
	return
}

// Wrap2Pi maps an angle into [0, 2*Pi)
func Wrap2Pi(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}
