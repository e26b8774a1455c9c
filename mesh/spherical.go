package mesh

import (
	"math"

	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

// SphericalMesh has axes (r, theta, phi) about Origin, theta measured from +z
type SphericalMesh struct {
	curvilinear
	RGrid, ThetaGrid, PhiGrid []float64
}

func NewSphericalMesh(id int, rGrid, thetaGrid, phiGrid, origin []float64) (m *SphericalMesh, err error) {
	if err = checkGrid(id, "r", rGrid, 0, math.Inf(1)); err != nil {
		return
	}
	if err = checkGrid(id, "theta", thetaGrid, 0, math.Pi*(1+angleTol)); err != nil {
		return
	}
	if err = checkGrid(id, "phi", phiGrid, 0, 2*math.Pi*(1+angleTol)); err != nil {
		return
	}
	m = &SphericalMesh{
		RGrid:     append([]float64(nil), rGrid...),
		ThetaGrid: append([]float64(nil), thetaGrid...),
		PhiGrid:   append([]float64(nil), phiGrid...),
	}
	shape := [3]int{len(rGrid) - 1, len(thetaGrid) - 1, len(phiGrid) - 1}
	m.curvilinear = curvilinear{
		base:     newBase(id, 3, shape),
		Origin:   utils.NewVec3(origin),
		grids:    [3][]float64{m.RGrid, m.ThetaGrid, m.PhiGrid},
		phiAxis:  2,
		poleAxis: 1,
		fullPhi:  isFullCircle(phiGrid),
		coords:   sphericalCoords,
		rate:     sphericalRate,
	}
	for _, r := range m.RGrid {
		if r > 0 {
			m.surfaces = append(m.surfaces, axisSurface{0, Sphere{R: r}})
		}
	}
	for _, theta := range m.ThetaGrid {
		switch {
		case theta <= 0 || theta >= math.Pi:
			// The poles are lines, not surfaces
		case math.Abs(math.Cos(theta)) < angleTol:
			m.surfaces = append(m.surfaces, axisSurface{1, AxisPlane{Axis: 2, Value: 0}})
		default:
			m.surfaces = append(m.surfaces, axisSurface{1, NewZCone(0, 0, 0, theta)})
		}
	}
	m.addPhiSurfaces()
	outer := Sphere{R: m.RGrid[len(m.RGrid)-1]}
	m.bbox = outer.BoundingBox(false).Translate(m.Origin)
	return
}

func (m *SphericalMesh) Type() types.MeshType { return types.MeshSpherical }

func sphericalCoords(q utils.Vec3) (x [3]float64) {
	x[0] = q.Norm()
	if x[0] > 0 {
		x[1] = math.Acos(math.Max(-1, math.Min(1, q[2]/x[0])))
	}
	x[2] = azimuth(q)
	return
}

func sphericalRate(a int, q, u utils.Vec3) float64 {
	switch a {
	case 0:
		return q.Dot(u)
	case 1:
		// Sign of d(theta)/dt
		return q[2]*q.Dot(u) - u[2]*q.Dot(q)
	default:
		return azimuthRate(q, u)
	}
}
