package mesh

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshtally/types"
)

// RegularMesh is a Cartesian mesh of 1 to 3 dimensions with constant cell
// width along each axis.
type RegularMesh struct {
	cartesian
	LowerLeft, UpperRight, Width []float64
}

// NewRegularMesh accepts either upperRight or width, width is used when
// upperRight is empty.
func NewRegularMesh(id int, dimension []int, lowerLeft, upperRight, width []float64) (m *RegularMesh, err error) {
	var (
		N = len(dimension)
	)
	if N < 1 || N > 3 {
		err = types.NewConfigError("mesh", id, "dimension must have 1 to 3 entries, have %d", N)
		return
	}
	if len(lowerLeft) != N {
		err = types.NewConfigError("mesh", id, "lower_left has %d entries for %d dimensions", len(lowerLeft), N)
		return
	}
	switch {
	case len(upperRight) == N:
	case len(upperRight) == 0 && len(width) == N:
		upperRight = make([]float64, N)
		for i := range upperRight {
			upperRight[i] = lowerLeft[i] + float64(dimension[i])*width[i]
		}
	default:
		err = types.NewConfigError("mesh", id, "need upper_right or width with %d entries", N)
		return
	}
	var shape [3]int
	copy(shape[:], dimension)
	m = &RegularMesh{
		LowerLeft:  append([]float64(nil), lowerLeft...),
		UpperRight: append([]float64(nil), upperRight...),
		Width:      make([]float64, N),
	}
	m.cartesian = cartesian{base: newBase(id, N, shape), uniform: true}
	for i := 0; i < N; i++ {
		if dimension[i] < 1 {
			err = types.NewConfigError("mesh", id, "dimension[%d] = %d must be at least 1", i, dimension[i])
			return
		}
		if !(upperRight[i] > lowerLeft[i]) {
			err = types.NewConfigError("mesh", id, "upper_right[%d] = %g must exceed lower_left[%d] = %g",
				i, upperRight[i], i, lowerLeft[i])
			return
		}
		m.Width[i] = (upperRight[i] - lowerLeft[i]) / float64(dimension[i])
		m.lower[i], m.width[i] = lowerLeft[i], m.Width[i]
		m.grids[i] = floats.Span(make([]float64, dimension[i]+1), lowerLeft[i], upperRight[i])
	}
	m.initBoundingBox()
	return
}

func (m *RegularMesh) Type() types.MeshType { return types.MeshRegular }
