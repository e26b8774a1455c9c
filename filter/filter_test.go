package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

func newMeshes(t *testing.T) (reg *mesh.RegularMesh, sq *mesh.RegularMesh) {
	var err error
	reg, err = mesh.NewRegularMesh(2, []int{5}, []float64{-7.5}, []float64{7.5}, nil)
	require.NoError(t, err)
	sq, err = mesh.NewRegularMesh(6, []int{2, 2}, []float64{0, 0}, []float64{2, 2}, nil)
	require.NoError(t, err)
	return
}

func TestClassifyCrossings(t *testing.T) {
	reg, sq := newMeshes(t)
	{ // Entering, interior and leaving crossings of the [5] mesh
		bins := ClassifyCrossings(reg, reg.Crossings(utils.Vec3{-10}, utils.Vec3{10}), nil)
		require.Len(t, bins, 6)
		assert.Equal(t, mesh.CellIndex{0, 0, 0}, bins[0].Cell)
		assert.Equal(t, types.NewSurfaceDirection(0, false), bins[0].Face)
		assert.Equal(t, 0, bins[0].Bin)
		for k := 1; k < 6; k++ {
			assert.Equal(t, mesh.CellIndex{k - 1, 0, 0}, bins[k].Cell)
			assert.True(t, bins[k].Face.Plus())
			assert.Equal(t, 2*(k-1)+1, bins[k].Bin)
		}
		for _, b := range bins {
			assert.Equal(t, 1., b.Sign)
		}
	}
	{ // Leaving backwards
		bins := ClassifyCrossings(reg, reg.Crossings(utils.Vec3{0}, utils.Vec3{-10}), nil)
		require.Len(t, bins, 3)
		assert.Equal(t, -1., bins[2].Sign)
		assert.Equal(t, mesh.CellIndex{0, 0, 0}, bins[2].Cell)
		assert.Equal(t, "-x", bins[2].Face.Label(reg.Type()))
	}
	{ // A corner gives one bin per axis
		bins := ClassifyCrossings(sq, sq.Crossings(utils.Vec3{0.5, 0.5}, utils.Vec3{1.5, 1.5}), nil)
		require.Len(t, bins, 2)
		assert.Equal(t, 0*4+1, bins[0].Bin)
		assert.Equal(t, 1*4+3, bins[1].Bin)
		assert.Equal(t, bins[0].Distance, bins[1].Distance)
	}
}

func TestMeshFilter(t *testing.T) {
	var (
		ws Workspace
	)
	reg, sq := newMeshes(t)
	f := NewMeshFilter(1, reg, sq)
	assert.Equal(t, 9, f.BinCount())
	assert.Equal(t, types.FilterMesh, f.Type())
	{ // A collision in both meshes matches a bin of each
		ev := &Event{Kind: CollisionEvent, Start: utils.Vec3{1.2, 0.5, 0}, Weight: 1}
		m := f.Match(ev, &ws, nil)
		require.Len(t, m, 2)
		assert.Equal(t, 2, m[0].Bin)
		assert.Equal(t, 5+1, m[1].Bin)
		assert.Equal(t, "mesh 6 (1, 0)", f.Label(m[1].Bin))
		assert.Equal(t, "mesh 2 (2)", f.Label(m[0].Bin))
	}
	{ // Outside every mesh
		ev := &Event{Kind: CollisionEvent, Start: utils.Vec3{9, 9, 9}}
		assert.Empty(t, f.Match(ev, &ws, nil))
	}
	{ // A track is split into the intervals spent in each cell
		ev := &Event{Kind: TrackEvent, Start: utils.Vec3{-6, 0.5}, End: utils.Vec3{0.5, 0.5}}
		m := f.Match(ev, &ws, nil)
		require.Len(t, m, 4)
		assert.Equal(t, Match{Bin: 0, Lo: 0, Hi: 1.5, Sign: 1}, m[0])
		assert.InDelta(t, 4.5, m[1].Hi, 1.e-12)
		assert.Equal(t, 2, m[2].Bin)
		assert.InDelta(t, 6.5, m[2].Hi, 1.e-12)
		assert.Equal(t, 5, m[3].Bin)
		assert.InDelta(t, 6, m[3].Lo, 1.e-12)
		assert.InDelta(t, 6.5, m[3].Hi, 1.e-12)
	}
	assert.Panics(t, func() { f.Label(9) })
}

func TestMeshSurfaceFilter(t *testing.T) {
	var (
		ws Workspace
	)
	reg, sq := newMeshes(t)
	f := NewMeshSurfaceFilter(3, reg, sq)
	assert.Equal(t, 5*2+4*4, f.BinCount())
	{ // Collisions cross nothing
		assert.Empty(t, f.Match(&Event{Kind: CollisionEvent, Start: utils.Vec3{1, 1, 1}}, &ws, nil))
	}
	{ // Out and back: every crossing is undone, the net over all bins is zero
		out := &Event{Kind: TrackEvent, Start: utils.Vec3{-9, 0.5}, End: utils.Vec3{5, 0.5}}
		back := &Event{Kind: TrackEvent, Start: out.End, End: out.Start}
		var net float64
		mOut := f.Match(out, &ws, nil)
		for _, m := range mOut {
			assert.Equal(t, m.Lo, m.Hi)
			assert.Equal(t, 1., m.Sign)
			net += m.Sign
		}
		// reg: 5 faces to x = 5, sq: 3 faces
		require.Len(t, mOut, 8)
		mBack := f.Match(back, &ws, nil)
		require.Len(t, mBack, len(mOut))
		for _, m := range mBack {
			net += m.Sign
		}
		assert.Equal(t, 0., net)
		// Leaving cell (0, 0) of sq across x = 1 one way, entering it the other
		assert.Equal(t, 10+0*4+1, mOut[6].Bin)
		assert.Equal(t, 10+1*4+0, mBack[len(mBack)-2].Bin)
	}
	{ // Labels name the face
		assert.Equal(t, "mesh 2 (0) -x", f.Label(0))
		assert.Equal(t, "mesh 6 (1, 1) +y", f.Label(10+3*4+3))
	}
}

func TestEnergyFilter(t *testing.T) {
	var (
		ws Workspace
	)
	f, err := NewEnergyFilter(10, []float64{0, 1.e5, 2.e7})
	require.NoError(t, err)
	assert.Equal(t, 2, f.BinCount())
	match := func(e float64) []Match {
		return f.Match(&Event{Kind: TrackEvent, Energy: e}, &ws, nil)
	}
	assert.Equal(t, 0, match(1.e3)[0].Bin)
	assert.Equal(t, 1, match(1.e5)[0].Bin)
	assert.True(t, math.IsInf(match(1.e5)[0].Hi, 1))
	assert.Empty(t, match(2.e7))
	assert.Empty(t, match(-1))
	assert.Contains(t, f.Label(1), "1.000e+05")
	_, err = NewEnergyFilter(11, []float64{1})
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	_, err = NewEnergyFilter(11, []float64{2, 1})
	assert.Error(t, err)
	_, err = NewEnergyFilter(11, []float64{1, 1, 2})
	assert.Error(t, err)
}

func TestNewFromParameters(t *testing.T) {
	reg, sq := newMeshes(t)
	meshes := map[int]mesh.Mesh{2: reg, 6: sq}
	f, err := NewFromParameters(InputParameters.FilterParameters{ID: 4, Type: "meshsurface", Bins: []int{6}}, meshes)
	require.NoError(t, err)
	assert.Equal(t, 16, f.BinCount())
	assert.Equal(t, 4, f.ID())
	f, err = NewFromParameters(InputParameters.FilterParameters{ID: 5, Type: "Energy", Edges: []float64{0, 1}}, meshes)
	require.NoError(t, err)
	assert.Equal(t, types.FilterEnergy, f.Type())
	_, err = NewFromParameters(InputParameters.FilterParameters{ID: 6, Type: "mesh", Bins: []int{3}}, meshes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter 6: references nonexistent mesh 3")
	_, err = NewFromParameters(InputParameters.FilterParameters{ID: 7, Type: "cell"}, meshes)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}
