package mesh

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshtally/types"
)

// RectilinearMesh is a 3D Cartesian mesh with arbitrary grid lines per axis
type RectilinearMesh struct {
	cartesian
	XGrid, YGrid, ZGrid []float64
}

func NewRectilinearMesh(id int, xGrid, yGrid, zGrid []float64) (m *RectilinearMesh, err error) {
	m = &RectilinearMesh{
		XGrid: append([]float64(nil), xGrid...),
		YGrid: append([]float64(nil), yGrid...),
		ZGrid: append([]float64(nil), zGrid...),
	}
	grids := [3][]float64{m.XGrid, m.YGrid, m.ZGrid}
	for a, name := range types.MeshRectilinear.AxisNames() {
		if err = checkGrid(id, name, grids[a], math.Inf(-1), math.Inf(1)); err != nil {
			return
		}
	}
	shape := [3]int{len(xGrid) - 1, len(yGrid) - 1, len(zGrid) - 1}
	m.cartesian = cartesian{base: newBase(id, 3, shape), grids: grids}
	m.initBoundingBox()
	return
}

func (m *RectilinearMesh) Type() types.MeshType { return types.MeshRectilinear }

// checkGrid requires at least two finite, strictly increasing values inside
// [lo, hi]
func checkGrid(id int, name string, grid []float64, lo, hi float64) (err error) {
	if len(grid) < 2 {
		return types.NewConfigError("mesh", id, "%s grid needs at least 2 values, have %d", name, len(grid))
	}
	if floats.HasNaN(grid) || math.IsInf(grid[0], 0) || math.IsInf(grid[len(grid)-1], 0) {
		return types.NewConfigError("mesh", id, "%s grid has non-finite values", name)
	}
	for i := 1; i < len(grid); i++ {
		if !(grid[i] > grid[i-1]) {
			return types.NewConfigError("mesh", id, "%s grid is not strictly increasing at %d: %g <= %g",
				name, i, grid[i], grid[i-1])
		}
	}
	if grid[0] < lo || grid[len(grid)-1] > hi {
		return types.NewConfigError("mesh", id, "%s grid [%g, %g] outside [%g, %g]",
			name, grid[0], grid[len(grid)-1], lo, hi)
	}
	return
}
