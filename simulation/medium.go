package simulation

import (
	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/utils"
)

// Medium is a single homogeneous material filling a vacuum bounded sphere
// centered on the origin
type Medium struct {
	TotalXS    float64 // 1/cm
	Absorption float64 // probability per collision
	EnergyLoss float64 // fraction of energy lost per scatter
	Response   float64 // score per unit track length
	Cutoff     float64 // histories end below this energy
	Boundary   mesh.Sphere
}

func NewMedium(mp InputParameters.MediumParameters) Medium {
	return Medium{
		TotalXS:    mp.TotalXS,
		Absorption: mp.Absorption,
		EnergyLoss: mp.EnergyLoss,
		Response:   mp.Response,
		Cutoff:     mp.Cutoff,
		Boundary:   mesh.Sphere{R: mp.Radius},
	}
}

// Escape is the distance from p along u to the vacuum boundary, zero when p
// is already outside
func (md Medium) Escape(p, u utils.Vec3, dst []float64) (d float64, scratch []float64) {
	scratch = md.Boundary.Distances(p, u, dst[:0])
	for _, t := range scratch {
		d = max(d, t)
	}
	if md.Boundary.Evaluate(p) >= 0 {
		d = 0
	}
	return
}
