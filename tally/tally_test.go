package tally

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

type fixture struct {
	reg             *mesh.RegularMesh
	meshF, surfF    filter.Filter
	surf2F, energyF filter.Filter
}

func newFixture(t testing.TB) (fx fixture) {
	var err error
	fx.reg, err = mesh.NewRegularMesh(2, []int{5}, []float64{-7.5}, []float64{7.5}, nil)
	require.NoError(t, err)
	fx.meshF = filter.NewMeshFilter(1, fx.reg)
	fx.surfF = filter.NewMeshSurfaceFilter(2, fx.reg)
	fx.surf2F = filter.NewMeshSurfaceFilter(3, fx.reg)
	fx.energyF, err = filter.NewEnergyFilter(4, []float64{0, 1.e5, 2.e7})
	require.NoError(t, err)
	return
}

func TestPairingRules(t *testing.T) {
	fx := newFixture(t)
	total, current := []types.ScoreKind{types.ScoreTotal}, []types.ScoreKind{types.ScoreCurrent}
	fails := func(filters []filter.Filter, scores []types.ScoreKind, est types.Estimator, msg string) {
		_, err := NewTally(9, filters, scores, est, types.CurrentNet)
		require.Error(t, err, msg)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		assert.Contains(t, err.Error(), msg)
		assert.Contains(t, err.Error(), "tally 9")
	}
	fails([]filter.Filter{fx.meshF}, current, types.TrackLength, "exactly one meshsurface filter, have 0")
	fails([]filter.Filter{fx.surfF, fx.surf2F}, current, types.TrackLength, "exactly one meshsurface filter, have 2")
	fails([]filter.Filter{fx.surfF}, []types.ScoreKind{types.ScoreCurrent, types.ScoreTotal}, types.TrackLength,
		"cannot share a tally")
	fails([]filter.Filter{fx.surfF}, total, types.TrackLength, "total score cannot use a meshsurface filter")
	fails([]filter.Filter{fx.surfF}, current, types.Collision, "collision estimator")
	fails([]filter.Filter{fx.meshF, fx.meshF}, total, types.TrackLength, "filter 1 listed twice")
	fails(nil, total, types.TrackLength, "no filters")
	{ // Legal combinations
		tl, err := NewTally(1, []filter.Filter{fx.meshF, fx.energyF}, total, types.Collision, types.CurrentNet)
		require.NoError(t, err)
		assert.Equal(t, 10, tl.Radix.Size)
		tl, err = NewTally(2, []filter.Filter{fx.energyF, fx.surfF}, current, types.TrackLength, types.CurrentUnsigned)
		require.NoError(t, err)
		assert.Equal(t, 20, tl.Size())
		assert.Contains(t, tl.Describe(), "energy[4](2 bins) x meshsurface[2](10 bins) = 20 bins")
	}
}

func TestEvaluate(t *testing.T) {
	ev := &filter.Event{Kind: filter.TrackEvent, Weight: 0.5, Response: 2}
	assert.Equal(t, 3., Evaluate(types.ScoreTotal, types.TrackLength, types.CurrentNet, ev, 1, 4, 1))
	assert.Equal(t, 1., Evaluate(types.ScoreTotal, types.Collision, types.CurrentNet, ev, 0, 0, 1))
	assert.Equal(t, -0.5, Evaluate(types.ScoreCurrent, types.TrackLength, types.CurrentNet, ev, 2, 2, -1))
	assert.Equal(t, 0.5, Evaluate(types.ScoreCurrent, types.TrackLength, types.CurrentUnsigned, ev, 2, 2, -1))
}

func TestScore(t *testing.T) {
	var (
		ws Workspace
	)
	fx := newFixture(t)
	total, err := NewTally(1, []filter.Filter{fx.energyF, fx.meshF}, []types.ScoreKind{types.ScoreTotal},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	current, err := NewTally(2, []filter.Filter{fx.surfF}, []types.ScoreKind{types.ScoreCurrent},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	collision, err := NewTally(3, []filter.Filter{fx.meshF}, []types.ScoreKind{types.ScoreTotal},
		types.Collision, types.CurrentNet)
	require.NoError(t, err)
	r := NewRegistry(total, current, collision)
	acc := r.NewAccumulator()
	{ // Track from outside to the middle of cell 3
		ev := &filter.Event{Kind: filter.TrackEvent, Start: utils.Vec3{-10}, End: utils.Vec3{3},
			Weight: 2, Response: 0.5, Energy: 2.e6}
		assert.Equal(t, 2, r.Score(ev, &ws, acc))
		// energy group 1 is the slow digit
		for cell, length := range []float64{3, 3, 3, 1.5} {
			assert.InDelta(t, length, acc.Sum[acc.layout.entry(0, 5+cell, 0)], 1.e-12)
		}
		assert.Equal(t, 0., acc.Sum[acc.layout.entry(0, 4, 0)])
		assert.Equal(t, 2., acc.Sum[acc.layout.entry(1, 0, 0)]) // entering -x of cell 0
		assert.Equal(t, 2., acc.Sum[acc.layout.entry(1, 5, 0)]) // leaving +x of cell 2
		assert.Equal(t, 4., acc.Sum2[acc.layout.entry(1, 5, 0)])
	}
	{ // A collision only reaches the collision tally
		ev := &filter.Event{Kind: filter.CollisionEvent, Start: utils.Vec3{0}, Weight: 1, Response: 3}
		assert.Equal(t, 1, r.Score(ev, &ws, acc))
		assert.Equal(t, 3., acc.Sum[acc.layout.entry(2, 2, 0)])
	}
	{ // Outside the mesh and outside the energy range
		assert.Equal(t, 0, r.Score(&filter.Event{Kind: filter.CollisionEvent, Start: utils.Vec3{20}}, &ws, acc))
		assert.Equal(t, 0, r.Score(&filter.Event{Kind: filter.TrackEvent, Start: utils.Vec3{0.1}, End: utils.Vec3{0.2},
			Energy: 3.e7}, &ws, acc))
	}
	assert.Equal(t, "E [1.000e+05, 2.000e+07), mesh 2 (3)", total.Label(8, nil))
}

func TestCurrentWithMeshFilter(t *testing.T) {
	var (
		ws Workspace
	)
	fx := newFixture(t)
	tl, err := NewTally(1, []filter.Filter{fx.meshF, fx.surfF}, []types.ScoreKind{types.ScoreCurrent},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	r := NewRegistry(tl)
	acc := r.NewAccumulator()
	score := func(a, b float64) {
		acc.Reset()
		require.Equal(t, 1, r.Score(&filter.Event{Kind: filter.TrackEvent, Start: utils.Vec3{a}, End: utils.Vec3{b},
			Weight: 1}, &ws, acc))
	}
	{ // A crossing between cells 0 and 1 belongs to the cell being exited
		score(-6, -3)
		assert.Equal(t, 1., floats.Sum(acc.Sum))
		assert.Equal(t, 1., acc.Sum[acc.layout.entry(0, 0*10+1, 0)])
		score(-3, -6)
		assert.Equal(t, -1., floats.Sum(acc.Sum))
		assert.Equal(t, -1., acc.Sum[acc.layout.entry(0, 1*10+2, 0)])
	}
	{ // Entering and leaving the mesh through the -x face of cell 0
		score(-9, -6)
		assert.Equal(t, 1., floats.Sum(acc.Sum))
		assert.Equal(t, 1., acc.Sum[acc.layout.entry(0, 0, 0)])
		score(-6, -9)
		assert.Equal(t, -1., floats.Sum(acc.Sum))
		assert.Equal(t, -1., acc.Sum[acc.layout.entry(0, 0, 0)])
	}
	{ // Crossing the whole mesh scores each of its six planes once
		score(-10, 10)
		assert.Equal(t, 6., floats.Sum(acc.Sum))
		for cell := 0; cell < 5; cell++ {
			assert.Equal(t, 1., acc.Sum[acc.layout.entry(0, cell*10+2*cell+1, 0)])
		}
		assert.Equal(t, 1., acc.Sum[acc.layout.entry(0, 0, 0)])
	}
}

func TestTrackLengthConservation(t *testing.T) {
	var (
		ws  Workspace
		rng = rand.New(rand.NewPCG(5, 6))
	)
	fx := newFixture(t)
	tl, err := NewTally(1, []filter.Filter{fx.meshF}, []types.ScoreKind{types.ScoreTotal},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	r := NewRegistry(tl)
	acc := r.NewAccumulator()
	var inside float64
	for n := 0; n < 200; n++ {
		a, b := 30*rng.Float64()-15, 30*rng.Float64()-15
		r.Score(&filter.Event{Kind: filter.TrackEvent, Start: utils.Vec3{a}, End: utils.Vec3{b}, Weight: 1,
			Response: 1}, &ws, acc)
		lo, hi := math.Max(math.Min(a, b), -7.5), math.Min(math.Max(a, b), 7.5)
		inside += math.Max(0, hi-lo)
	}
	var sum float64
	for _, v := range acc.Sum {
		sum += v
	}
	assert.InDelta(t, inside, sum, 1.e-9*inside)
}

func TestReductionOrder(t *testing.T) {
	var (
		rng = rand.New(rand.NewPCG(7, 8))
	)
	fx := newFixture(t)
	tl, err := NewTally(1, []filter.Filter{fx.energyF, fx.meshF}, []types.ScoreKind{types.ScoreTotal},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	r := NewRegistry(tl)
	workers := make([]*Accumulator, 4)
	for w := range workers {
		workers[w] = r.NewAccumulator()
		for n := 0; n < 100; n++ {
			workers[w].Add(0, rng.IntN(tl.Radix.Size), 0, rng.Float64())
		}
	}
	forward, backward := r.NewAccumulator(), r.NewAccumulator()
	for w := range workers {
		forward.Merge(workers[w])
		backward.Merge(workers[len(workers)-1-w])
	}
	assert.InDeltaSlice(t, forward.Sum, backward.Sum, 1.e-12)
	assert.InDeltaSlice(t, forward.Sum2, backward.Sum2, 1.e-12)
	{ // Pairwise merge gives the same totals
		a, b := r.NewAccumulator(), r.NewAccumulator()
		a.Merge(workers[0])
		a.Merge(workers[1])
		b.Merge(workers[2])
		b.Merge(workers[3])
		a.Merge(b)
		assert.InDeltaSlice(t, forward.Sum, a.Sum, 1.e-12)
	}
	other := NewRegistry(tl).NewAccumulator()
	assert.Panics(t, func() { forward.Merge(other) })
}

func TestStatistics(t *testing.T) {
	fx := newFixture(t)
	tl, err := NewTally(1, []filter.Filter{fx.meshF}, []types.ScoreKind{types.ScoreTotal},
		types.TrackLength, types.CurrentNet)
	require.NoError(t, err)
	r := NewRegistry(tl)
	st := r.NewStatistics()
	acc := r.NewAccumulator()
	batches := []float64{10, 14, 9, 11, 16}
	for _, v := range batches {
		acc.Add(0, 3, 0, v)
		st.EndBatch(acc, 2)
		assert.Equal(t, 0., acc.Sum[3])
	}
	perHistory := make([]float64, len(batches))
	for i, v := range batches {
		perHistory[i] = v / 2
	}
	results := st.Results()
	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, 5, res.Realizations)
	assert.Equal(t, []int{5}, res.Shape)
	assert.InDelta(t, stat.Mean(perHistory, nil), res.Mean[3][0], 1.e-12)
	assert.InDelta(t, stat.StdErr(stat.StdDev(perHistory, nil), float64(len(perHistory))), res.StdErr[3][0], 1.e-12)
	assert.Equal(t, 0., res.Mean[0][0])
	rel, nz := res.RelativeError()
	assert.Equal(t, 1, nz)
	assert.InDelta(t, res.StdErr[3][0]/res.Mean[3][0], rel, 1.e-15)
	var buf bytes.Buffer
	res.Print(&buf, 10)
	assert.Contains(t, buf.String(), "mesh 2 (3)")
	assert.NotContains(t, buf.String(), "mesh 2 (0)")
	{ // A single realization has no error estimate
		m, se := meanStdErr(3, 9, 1)
		assert.Equal(t, 3., m)
		assert.Equal(t, 0., se)
	}
	assert.Panics(t, func() { st.EndBatch(acc, 0) })
}

func TestBuild(t *testing.T) {
	ip, err := InputParameters.ReadFile("../InputParameters/testdata/mesh_tallies.yaml")
	require.NoError(t, err)
	r, err := Build(ip)
	require.NoError(t, err)
	assert.Len(t, r.Meshes, 5)
	assert.Len(t, r.Filters, 10)
	require.Len(t, r.Tallies, 9)
	assert.Equal(t, 2304, r.Tallies[0].Radix.Size)
	assert.Equal(t, types.CurrentUnsigned, r.Tallies[7].CurrentMode)
	assert.Equal(t, types.Collision, r.Tallies[8].Estimator)
	assert.Equal(t, 2*64, r.Tallies[8].Radix.Size)
	{ // Illegal pairings are configuration errors naming the tally
		ip.Tallies = append(ip.Tallies,
			InputParameters.TallyParameters{ID: 20, Filters: []int{1}, Scores: []string{"current"}},
			InputParameters.TallyParameters{ID: 21, Filters: []int{2}, Scores: []string{"total"}, Estimator: "collision"},
			InputParameters.TallyParameters{ID: 22, Filters: []int{1}, Scores: []string{"total"}, Estimator: "analog"})
		_, err = Build(ip)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		assert.Contains(t, err.Error(), "tally 20: current score needs exactly one meshsurface filter")
		assert.Contains(t, err.Error(), "tally 21: total score cannot use a meshsurface filter")
		assert.Contains(t, err.Error(), "tally 21: collision estimator")
		assert.Contains(t, err.Error(), "tally 22: unknown estimator type")
	}
	{ // Invalid grids are caught when the meshes are built
		ip.Tallies = ip.Tallies[:9]
		ip.Meshes[1].UpperRight = []float64{-8}
		_, err = Build(ip)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mesh 2: upper_right[0]")
	}
}
