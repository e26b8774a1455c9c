package mesh

import (
	"math"

	"github.com/notargets/meshtally/utils"
)

// BoundingBox is an axis aligned box, unbounded axes carry -Inf / +Inf
type BoundingBox struct {
	LowerLeft, UpperRight utils.Vec3
}

func Unbounded() BoundingBox {
	var (
		inf = math.Inf(1)
	)
	return BoundingBox{
		LowerLeft:  utils.Vec3{-inf, -inf, -inf},
		UpperRight: utils.Vec3{inf, inf, inf},
	}
}

func (bb BoundingBox) Expand(d float64) BoundingBox {
	for i := 0; i < 3; i++ {
		bb.LowerLeft[i] -= d
		bb.UpperRight[i] += d
	}
	return bb
}

func (bb BoundingBox) Translate(v utils.Vec3) BoundingBox {
	return BoundingBox{LowerLeft: bb.LowerLeft.Add(v), UpperRight: bb.UpperRight.Add(v)}
}

// Intersect returns the overlap of two boxes, which may be empty
func (bb BoundingBox) Intersect(other BoundingBox) BoundingBox {
	for i := 0; i < 3; i++ {
		bb.LowerLeft[i] = math.Max(bb.LowerLeft[i], other.LowerLeft[i])
		bb.UpperRight[i] = math.Min(bb.UpperRight[i], other.UpperRight[i])
	}
	return bb
}

func (bb BoundingBox) Empty() bool {
	for i := 0; i < 3; i++ {
		if bb.LowerLeft[i] > bb.UpperRight[i] {
			return true
		}
	}
	return false
}

func (bb BoundingBox) Contains(p utils.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < bb.LowerLeft[i] || p[i] > bb.UpperRight[i] {
			return false
		}
	}
	return true
}

// Hits reports whether the segment from p along unit direction u for length
// L touches the box, using the slab method.
func (bb BoundingBox) Hits(p, u utils.Vec3, L float64) bool {
	var (
		tmin, tmax = 0., L
	)
	for i := 0; i < 3; i++ {
		lo, hi := bb.LowerLeft[i], bb.UpperRight[i]
		if u[i] == 0 {
			if p[i] < lo || p[i] > hi {
				return false
			}
			continue
		}
		t1, t2 := (lo-p[i])/u[i], (hi-p[i])/u[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin, tmax = math.Max(tmin, t1), math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}
