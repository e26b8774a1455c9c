package mesh

import (
	"math"

	"github.com/notargets/meshtally/utils"
)

// cartesian is the grid-line walker shared by regular and rectilinear meshes.
// Axes at or beyond ndim are unbounded and never crossed.
type cartesian struct {
	base
	grids   [3][]float64
	uniform bool // grid lines equally spaced, indexed arithmetically
	lower   [3]float64
	width   [3]float64
}

func (c *cartesian) initBoundingBox() {
	c.bbox = Unbounded()
	for a := 0; a < c.ndim; a++ {
		g := c.grids[a]
		c.bbox.LowerLeft[a], c.bbox.UpperRight[a] = g[0], g[len(g)-1]
	}
}

// axisIndex places a coordinate on one axis, clamped to [-1, n]
func (c *cartesian) axisIndex(a int, x float64) (i int) {
	if a >= c.ndim {
		return 0
	}
	n := c.shape[a]
	if !c.uniform {
		return searchGrid(c.grids[a], x)
	}
	f := math.Floor((x - c.lower[a]) / c.width[a])
	switch {
	case f < 0:
		i = -1
	case f >= float64(n):
		i = n
	default:
		i = int(f)
	}
	return
}

func (c *cartesian) Locate(p utils.Vec3) (idx CellIndex, inside bool) {
	for a := 0; a < 3; a++ {
		idx[a] = c.axisIndex(a, p[a])
	}
	inside = c.Contains(idx)
	return
}

// nextCrossing is the distance from x0 to the next grid line of axis a when
// moving at rate ua out of cell i.
func (c *cartesian) nextCrossing(a, i int, x0, ua float64) float64 {
	if a >= c.ndim || ua == 0 {
		return math.Inf(1)
	}
	g := c.grids[a]
	if ua > 0 {
		if i+1 > c.shape[a] {
			return math.Inf(1)
		}
		return (g[i+1] - x0) / ua
	}
	if i < 0 {
		return math.Inf(1)
	}
	return (g[i] - x0) / ua
}

func (c *cartesian) AppendCrossings(dst []Crossing, start, end utils.Vec3) []Crossing {
	var (
		u, L  = end.Sub(start).Unit()
		tol   = c.tolerance(L)
		idx   CellIndex
		tNext [3]float64
	)
	if L == 0 || !c.bbox.Expand(tol).Hits(start, u, L) {
		return dst
	}
	for a := 0; a < 3; a++ {
		idx[a] = c.axisIndex(a, start[a])
		tNext[a] = c.nextCrossing(a, idx[a], start[a], u[a])
	}
	for {
		t := math.Min(tNext[0], math.Min(tNext[1], tNext[2]))
		if t >= L-tol {
			break
		}
		// Lines met within tol of each other are one edge or corner, taken
		// in axis order
		for a := 0; a < 3; a++ {
			if tNext[a]-t > tol {
				continue
			}
			from := idx
			if u[a] > 0 {
				idx[a]++
			} else {
				idx[a]--
			}
			if t > tol && (c.Contains(from) || c.Contains(idx)) {
				dst = append(dst, Crossing{Distance: t, Axis: a, Positive: u[a] > 0, From: from, To: idx})
			}
			tNext[a] = c.nextCrossing(a, idx[a], start[a], u[a])
		}
	}
	return dst
}

func (c *cartesian) Crossings(start, end utils.Vec3) []Crossing {
	return c.AppendCrossings(nil, start, end)
}
