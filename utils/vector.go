package utils

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in Cartesian space
type Vec3 [3]float64

func NewVec3(x []float64) (v Vec3) {
	// Shorter inputs leave the trailing coordinates at zero
	for i := 0; i < len(x) && i < 3; i++ {
		v[i] = x[i]
	}
	return
}

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

func (v Vec3) Scale(a float64) Vec3 { return Vec3{a * v[0], a * v[1], a * v[2]} }

func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns the normalized vector and its original length
func (v Vec3) Unit() (u Vec3, length float64) {
	length = v.Norm()
	if length == 0 {
		return
	}
	u = v.Scale(1. / length)
	return
}

// At returns the point a distance t along direction u from v
func (v Vec3) At(u Vec3, t float64) Vec3 {
	return Vec3{v[0] + t*u[0], v[1] + t*u[1], v[2] + t*u[2]}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
