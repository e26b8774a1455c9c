package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/utils"
)

type SourceType uint8

const (
	PointSource SourceType = iota
	BoxSource
)

func (st SourceType) String() string {
	return [...]string{"point", "box"}[st]
}

// Source emits particles of one energy, from a point or uniformly inside a box
type Source struct {
	Type   SourceType
	Origin utils.Vec3
	Box    mesh.BoundingBox
	Energy float64
}

func NewSource(sp InputParameters.SourceParameters) (s Source, err error) {
	s.Energy = sp.Energy
	switch sp.Type {
	case "", "point":
		s.Type = PointSource
		s.Origin = utils.NewVec3(sp.Origin)
	case "box":
		s.Type = BoxSource
		s.Box = mesh.BoundingBox{
			LowerLeft:  utils.NewVec3(sp.LowerLeft),
			UpperRight: utils.NewVec3(sp.UpperRight),
		}
		if s.Box.Empty() {
			err = fmt.Errorf("box source %v to %v is empty", s.Box.LowerLeft, s.Box.UpperRight)
		}
	default:
		err = fmt.Errorf("unknown source type %q", sp.Type)
	}
	return
}

// Sample draws a birth position
func (s Source) Sample(u *distuv.Uniform) (p utils.Vec3) {
	if s.Type == PointSource {
		return s.Origin
	}
	for i := 0; i < 3; i++ {
		lo, hi := s.Box.LowerLeft[i], s.Box.UpperRight[i]
		p[i] = lo + (hi-lo)*u.Rand()
	}
	return
}

// isotropic draws a direction uniformly over the unit sphere
func isotropic(u *distuv.Uniform) utils.Vec3 {
	var (
		mu  = 2*u.Rand() - 1
		phi = 2 * math.Pi * u.Rand()
		s   = math.Sqrt(max(0, 1-mu*mu))
	)
	return utils.Vec3{s * math.Cos(phi), s * math.Sin(phi), mu}
}
