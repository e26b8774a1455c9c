package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

// CellIndex is the per-axis index of a mesh cell. Axes beyond the mesh
// dimension hold 0, out of range axes hold -1 or the axis bin count.
type CellIndex [3]int

// Crossing is the passage of a segment through a grid surface of one axis.
// From and To are the cells exited and entered, at least one in the mesh.
type Crossing struct {
	Distance float64
	Axis     int
	Positive bool // travel toward increasing coordinate along Axis
	From, To CellIndex
}

// Segment is the piece [Lo, Hi] of a track that lies in one mesh cell
type Segment struct {
	Cell   CellIndex
	Bin    int
	Lo, Hi float64
}

func (s Segment) Length() float64 { return s.Hi - s.Lo }

type Mesh interface {
	ID() int
	Type() types.MeshType
	NDim() int
	Shape() [3]int
	BinCount() int
	Bin(idx CellIndex) int
	Index(bin int) CellIndex
	Contains(idx CellIndex) bool
	Locate(p utils.Vec3) (idx CellIndex, inside bool)
	Crossings(start, end utils.Vec3) []Crossing
	AppendCrossings(dst []Crossing, start, end utils.Vec3) []Crossing
	BoundingBox() BoundingBox
	Epsilon() float64
}

// base carries what every mesh type shares: identity, bin layout, the
// geometric tolerance and the bounding box.
type base struct {
	id    int
	ndim  int
	shape [3]int
	eps   float64
	bbox  BoundingBox
}

func newBase(id, ndim int, shape [3]int) base {
	for a := ndim; a < 3; a++ {
		shape[a] = 1
	}
	return base{id: id, ndim: ndim, shape: shape, eps: utils.NODETOL}
}

func (b *base) ID() int { return b.id }

func (b *base) NDim() int { return b.ndim }

func (b *base) Shape() [3]int { return b.shape }

func (b *base) BinCount() int { return b.shape[0] * b.shape[1] * b.shape[2] }

func (b *base) Epsilon() float64 { return b.eps }

func (b *base) SetEpsilon(eps float64) { b.eps = eps }

func (b *base) BoundingBox() BoundingBox { return b.bbox }

func (b *base) Contains(idx CellIndex) bool {
	for a := 0; a < 3; a++ {
		if idx[a] < 0 || idx[a] >= b.shape[a] {
			return false
		}
	}
	return true
}

// Bin flattens a cell index with the first axis varying fastest
func (b *base) Bin(idx CellIndex) int {
	if !b.Contains(idx) {
		panic(fmt.Errorf("cell %v outside mesh %d of shape %v", idx, b.id, b.shape))
	}
	return idx[0] + b.shape[0]*(idx[1]+b.shape[1]*idx[2])
}

func (b *base) Index(bin int) (idx CellIndex) {
	if bin < 0 || bin >= b.BinCount() {
		panic(fmt.Errorf("bin %d outside mesh %d with %d bins", bin, b.id, b.BinCount()))
	}
	idx[0] = bin % b.shape[0]
	bin /= b.shape[0]
	idx[1] = bin % b.shape[1]
	idx[2] = bin / b.shape[1]
	return
}

// tolerance is the distance within which crossings are merged or dropped
func (b *base) tolerance(L float64) float64 { return b.eps * math.Max(1, L) }

// searchGrid returns i with grid[i] <= x < grid[i+1], -1 below the grid and
// len(grid)-1 at or above its last line.
func searchGrid(grid []float64, x float64) int {
	return sort.Search(len(grid), func(i int) bool { return grid[i] > x }) - 1
}

// Workspace holds reusable buffers for one goroutine tracking many segments.
// Slices returned by its methods are valid until the next call.
type Workspace struct {
	crossings []Crossing
	segments  []Segment
}

func (ws *Workspace) Crossings(m Mesh, start, end utils.Vec3) []Crossing {
	ws.crossings = m.AppendCrossings(ws.crossings[:0], start, end)
	return ws.crossings
}

// Track partitions the segment start->end into the pieces lying in each mesh
// cell, in order of distance. Pieces outside the mesh are left out, so the
// lengths sum to the length of the segment inside the mesh.
func (ws *Workspace) Track(m Mesh, start, end utils.Vec3) []Segment {
	var (
		u, L = end.Sub(start).Unit()
		lo   float64
	)
	ws.segments = ws.segments[:0]
	if L == 0 {
		return ws.segments
	}
	crossings := ws.Crossings(m, start, end)
	for k := 0; k <= len(crossings); k++ {
		hi := L
		if k < len(crossings) {
			hi = crossings[k].Distance
		}
		if hi <= lo {
			continue
		}
		if idx, inside := m.Locate(start.At(u, 0.5*(lo+hi))); inside {
			ws.segments = append(ws.segments, Segment{Cell: idx, Bin: m.Bin(idx), Lo: lo, Hi: hi})
		}
		lo = hi
	}
	return ws.segments
}

// Track is a convenience for one-off calls, it allocates a fresh Workspace
func Track(m Mesh, start, end utils.Vec3) []Segment {
	var ws Workspace
	return ws.Track(m, start, end)
}
