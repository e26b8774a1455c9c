package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/notargets/meshtally/utils"
)

// axisSurface is one grid surface of a curvilinear mesh, in mesh-local
// coordinates, tagged with the axis whose index changes across it
type axisSurface struct {
	axis int
	surf Surface
}

type candidate struct {
	t    float64
	axis int
}

// curvilinear is the surface-intersection walker shared by cylindrical and
// spherical meshes. Grid surfaces are collected once; a crossing query
// gathers their distances, orders them and resolves cells by locating the
// midpoints between successive distances.
type curvilinear struct {
	base
	Origin   utils.Vec3
	grids    [3][]float64
	phiAxis  int
	poleAxis int  // -1 without a polar angle axis
	fullPhi  bool // phi grid covers [0, 2Pi], the first and last surfaces coincide
	surfaces []axisSurface
	// coords converts a local point to mesh coordinates, rate gives the sign
	// of the rate of change of coordinate a at local point q moving along u
	coords func(q utils.Vec3) [3]float64
	rate   func(a int, q, u utils.Vec3) float64
}

// angleTol absorbs round-off in angular grids read from input, such as a
// last phi of 6.283185307179586. It is used only while a mesh is built;
// tracking tolerances come from the mesh epsilon.
const angleTol = 1.e-12

func isFullCircle(phi []float64) bool {
	return phi[0] == 0 && scalar.EqualWithinAbsOrRel(phi[len(phi)-1], 2*math.Pi, angleTol, angleTol)
}

func (c *curvilinear) addPhiSurfaces() {
	var (
		g = c.grids[c.phiAxis]
		n = len(g)
	)
	if c.fullPhi {
		n--
	}
	for _, phi := range g[:n] {
		c.surfaces = append(c.surfaces, axisSurface{c.phiAxis, HalfPlane{Phi: phi}})
	}
}

// axisIndex is searchGrid except on a polar axis reaching the -z pole, whose
// last cell includes theta = Pi
func (c *curvilinear) axisIndex(a int, x float64) (i int) {
	g := c.grids[a]
	i = searchGrid(g, x)
	if a == c.poleAxis && i == len(g)-1 && x >= g[i] && g[i] >= math.Pi {
		i--
	}
	return
}

func (c *curvilinear) locateLocal(q utils.Vec3) (idx CellIndex) {
	x := c.coords(q)
	for a := 0; a < 3; a++ {
		idx[a] = c.axisIndex(a, x[a])
	}
	return
}

func (c *curvilinear) Locate(p utils.Vec3) (idx CellIndex, inside bool) {
	idx = c.locateLocal(p.Sub(c.Origin))
	inside = c.Contains(idx)
	return
}

func (c *curvilinear) AppendCrossings(dst []Crossing, start, end utils.Vec3) []Crossing {
	var (
		u, L  = end.Sub(start).Unit()
		tol   = c.tolerance(L)
		p     = start.Sub(c.Origin)
		dbuf  [4]float64
		cbuf  [32]candidate
		cands = cbuf[:0]
		prevT float64
	)
	if L == 0 || !c.bbox.Expand(tol).Hits(start, u, L) {
		return dst
	}
	for _, as := range c.surfaces {
		for _, t := range as.surf.Distances(p, u, dbuf[:0]) {
			if t > tol && t < L-tol {
				cands = append(cands, candidate{t: t, axis: as.axis})
			}
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].t == cands[j].t {
			return cands[i].axis < cands[j].axis
		}
		return cands[i].t < cands[j].t
	})
	for i := 0; i < len(cands); {
		var (
			t     = cands[i].t
			j     = i + 1
			nextT = L
		)
		for j < len(cands) && cands[j].t-t <= tol {
			j++
		}
		if j < len(cands) {
			nextT = cands[j].t
		}
		group := cands[i:j]
		tLast := group[len(group)-1].t
		// Surfaces met together (grid edges) are taken in axis order
		sort.SliceStable(group, func(k, l int) bool { return group[k].axis < group[l].axis })
		from := c.locateLocal(p.At(u, 0.5*(prevT+t)))
		after := c.locateLocal(p.At(u, 0.5*(t+nextT)))
		for k, cd := range group {
			a := cd.axis
			if (k > 0 && group[k-1].axis == a) || after[a] == from[a] {
				continue
			}
			to := from
			to[a] = after[a]
			if c.Contains(from) || c.Contains(to) {
				dst = append(dst, Crossing{
					Distance: t,
					Axis:     a,
					Positive: c.rate(a, p.At(u, t), u) > 0,
					From:     from,
					To:       to,
				})
			}
			from = to
		}
		prevT = tLast
		i = j
	}
	return dst
}

func (c *curvilinear) Crossings(start, end utils.Vec3) []Crossing {
	return c.AppendCrossings(nil, start, end)
}

func azimuth(q utils.Vec3) float64 { return utils.Wrap2Pi(math.Atan2(q[1], q[0])) }

// azimuthRate is the sign carrying part of d(phi)/dt
func azimuthRate(q, u utils.Vec3) float64 { return q[0]*u[1] - q[1]*u[0] }
