package mesh

import (
	"math"

	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

// CylindricalMesh has axes (r, phi, z) about a z axis through Origin
type CylindricalMesh struct {
	curvilinear
	RGrid, PhiGrid, ZGrid []float64
}

func NewCylindricalMesh(id int, rGrid, phiGrid, zGrid, origin []float64) (m *CylindricalMesh, err error) {
	if err = checkGrid(id, "r", rGrid, 0, math.Inf(1)); err != nil {
		return
	}
	if err = checkGrid(id, "phi", phiGrid, 0, 2*math.Pi*(1+angleTol)); err != nil {
		return
	}
	if err = checkGrid(id, "z", zGrid, math.Inf(-1), math.Inf(1)); err != nil {
		return
	}
	m = &CylindricalMesh{
		RGrid:   append([]float64(nil), rGrid...),
		PhiGrid: append([]float64(nil), phiGrid...),
		ZGrid:   append([]float64(nil), zGrid...),
	}
	shape := [3]int{len(rGrid) - 1, len(phiGrid) - 1, len(zGrid) - 1}
	m.curvilinear = curvilinear{
		base:     newBase(id, 3, shape),
		Origin:   utils.NewVec3(origin),
		grids:    [3][]float64{m.RGrid, m.PhiGrid, m.ZGrid},
		phiAxis:  1,
		poleAxis: -1,
		fullPhi:  isFullCircle(phiGrid),
		coords:   cylindricalCoords,
		rate:     cylindricalRate,
	}
	for _, r := range m.RGrid {
		if r > 0 {
			m.surfaces = append(m.surfaces, axisSurface{0, ZCylinder{R: r}})
		}
	}
	m.addPhiSurfaces()
	for _, z := range m.ZGrid {
		m.surfaces = append(m.surfaces, axisSurface{2, AxisPlane{Axis: 2, Value: z}})
	}
	var (
		outer = ZCylinder{R: m.RGrid[len(m.RGrid)-1]}
		zLo   = AxisPlane{Axis: 2, Value: m.ZGrid[0]}
		zHi   = AxisPlane{Axis: 2, Value: m.ZGrid[len(m.ZGrid)-1]}
	)
	m.bbox = outer.BoundingBox(false).Intersect(zLo.BoundingBox(true)).
		Intersect(zHi.BoundingBox(false)).Translate(m.Origin)
	return
}

func (m *CylindricalMesh) Type() types.MeshType { return types.MeshCylindrical }

func cylindricalCoords(q utils.Vec3) [3]float64 {
	return [3]float64{math.Hypot(q[0], q[1]), azimuth(q), q[2]}
}

func cylindricalRate(a int, q, u utils.Vec3) float64 {
	switch a {
	case 0:
		return q[0]*u[0] + q[1]*u[1]
	case 1:
		return azimuthRate(q, u)
	default:
		return u[2]
	}
}
