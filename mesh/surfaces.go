package mesh

import (
	"math"

	"github.com/notargets/meshtally/utils"
)

// Surface is an implicit surface f(p) = 0, negative on the inside (the "-"
// side) and positive outside.
type Surface interface {
	Evaluate(p utils.Vec3) float64
	// Distances appends the parameters t at which p + t*u meets the surface,
	// u a unit vector. Roots may be negative; tangent contacts are omitted.
	Distances(p, u utils.Vec3, dst []float64) []float64
	BoundingBox(positive bool) BoundingBox
}

// AxisPlane is the plane x_axis = Value
type AxisPlane struct {
	Axis  int
	Value float64
}

func (s AxisPlane) Evaluate(p utils.Vec3) float64 { return p[s.Axis] - s.Value }

func (s AxisPlane) Distances(p, u utils.Vec3, dst []float64) []float64 {
	if u[s.Axis] == 0 {
		if s.Evaluate(p) == 0 {
			degenerateIntersections.WithLabelValues("axisplane").Inc()
		}
		return dst
	}
	return append(dst, -s.Evaluate(p)/u[s.Axis])
}

func (s AxisPlane) BoundingBox(positive bool) (bb BoundingBox) {
	bb = Unbounded()
	if positive {
		bb.LowerLeft[s.Axis] = s.Value
	} else {
		bb.UpperRight[s.Axis] = s.Value
	}
	return
}

// ZCylinder is the infinite cylinder (x-X0)^2 + (y-Y0)^2 = R^2
type ZCylinder struct {
	X0, Y0, R float64
}

func (s ZCylinder) Evaluate(p utils.Vec3) float64 {
	x, y := p[0]-s.X0, p[1]-s.Y0
	return x*x + y*y - s.R*s.R
}

func (s ZCylinder) Distances(p, u utils.Vec3, dst []float64) []float64 {
	var (
		x, y = p[0] - s.X0, p[1] - s.Y0
		a    = u[0]*u[0] + u[1]*u[1]
		k    = x*u[0] + y*u[1]
		c    = s.Evaluate(p)
	)
	if a == 0 {
		// Parallel to the axis
		return dst
	}
	return appendRoots(dst, "zcylinder", a, k, c)
}

func (s ZCylinder) BoundingBox(positive bool) (bb BoundingBox) {
	bb = Unbounded()
	if !positive {
		bb.LowerLeft[0], bb.LowerLeft[1] = s.X0-s.R, s.Y0-s.R
		bb.UpperRight[0], bb.UpperRight[1] = s.X0+s.R, s.Y0+s.R
	}
	return
}

// Sphere is the surface |p - (X0,Y0,Z0)| = R
type Sphere struct {
	X0, Y0, Z0, R float64
}

func (s Sphere) Evaluate(p utils.Vec3) float64 {
	x, y, z := p[0]-s.X0, p[1]-s.Y0, p[2]-s.Z0
	return x*x + y*y + z*z - s.R*s.R
}

func (s Sphere) Distances(p, u utils.Vec3, dst []float64) []float64 {
	var (
		q = p.Sub(utils.Vec3{s.X0, s.Y0, s.Z0})
	)
	return appendRoots(dst, "sphere", u.Dot(u), q.Dot(u), s.Evaluate(p))
}

func (s Sphere) BoundingBox(positive bool) (bb BoundingBox) {
	if positive {
		return Unbounded()
	}
	c := utils.Vec3{s.X0, s.Y0, s.Z0}
	return BoundingBox{LowerLeft: c, UpperRight: c}.Expand(s.R)
}

// ZCone is one nappe of the cone (x-X0)^2 + (y-Y0)^2 = R2 (z-Z0)^2 about the
// z axis, the nappe being the one at polar angle Theta from +z. R2 is
// tan^2(Theta).
type ZCone struct {
	X0, Y0, Z0 float64
	R2         float64
	Theta      float64
}

func NewZCone(x0, y0, z0, theta float64) ZCone {
	var (
		tan = math.Tan(theta)
	)
	return ZCone{X0: x0, Y0: y0, Z0: z0, R2: tan * tan, Theta: theta}
}

func (s ZCone) Evaluate(p utils.Vec3) float64 {
	x, y, z := p[0]-s.X0, p[1]-s.Y0, p[2]-s.Z0
	return x*x + y*y - s.R2*z*z
}

func (s ZCone) Distances(p, u utils.Vec3, dst []float64) []float64 {
	var (
		x, y, z = p[0] - s.X0, p[1] - s.Y0, p[2] - s.Z0
		a       = u[0]*u[0] + u[1]*u[1] - s.R2*u[2]*u[2]
		k       = x*u[0] + y*u[1] - s.R2*z*u[2]
		n0      = len(dst)
		cos     = math.Cos(s.Theta)
	)
	dst = appendRoots(dst, "zcone", a, k, s.Evaluate(p))
	// Keep only hits on this nappe
	kept := dst[:n0]
	for _, t := range dst[n0:] {
		if (z+t*u[2])*cos > 0 {
			kept = append(kept, t)
		}
	}
	return kept
}

func (s ZCone) BoundingBox(positive bool) BoundingBox { return Unbounded() }

// HalfPlane is the azimuthal half plane phi = Phi bounded by the z axis
// through (X0, Y0).
type HalfPlane struct {
	X0, Y0 float64
	Phi    float64
}

// Evaluate is positive on the side of increasing phi
func (s HalfPlane) Evaluate(p utils.Vec3) float64 {
	x, y := p[0]-s.X0, p[1]-s.Y0
	return y*math.Cos(s.Phi) - x*math.Sin(s.Phi)
}

func (s HalfPlane) Distances(p, u utils.Vec3, dst []float64) []float64 {
	var (
		cos, sin = math.Cos(s.Phi), math.Sin(s.Phi)
		denom    = u[1]*cos - u[0]*sin
		f        = s.Evaluate(p)
	)
	if denom == 0 {
		if f == 0 {
			degenerateIntersections.WithLabelValues("halfplane").Inc()
		}
		return dst
	}
	t := -f / denom
	x, y := p[0]-s.X0+t*u[0], p[1]-s.Y0+t*u[1]
	if x*cos+y*sin > 0 {
		dst = append(dst, t)
	}
	return dst
}

func (s HalfPlane) BoundingBox(positive bool) BoundingBox { return Unbounded() }

func appendRoots(dst []float64, kind string, a, k, c float64) []float64 {
	roots, n := utils.SolveQuadratic(a, k, c)
	if n == 0 && a != 0 && k*k == a*c {
		degenerateIntersections.WithLabelValues(kind).Inc()
	}
	return append(dst, roots[:n]...)
}
