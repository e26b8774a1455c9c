package tally

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

func BenchmarkScore(b *testing.B) {
	var (
		ws Workspace
	)
	m, err := mesh.NewRegularMesh(1, []int{20, 20, 20}, []float64{-10, -10, -10}, []float64{10, 10, 10}, nil)
	require.NoError(b, err)
	energyF, err := filter.NewEnergyFilter(3, []float64{0, 1.e3, 1.e5, 2.e7})
	require.NoError(b, err)
	var (
		meshF = filter.NewMeshFilter(1, m)
		surfF = filter.NewMeshSurfaceFilter(2, m)
		ev    = &filter.Event{Kind: filter.TrackEvent, Start: utils.Vec3{-9.3, -8.1, -7.7},
			End: utils.Vec3{8.9, 7.2, 9.4}, Weight: 1, Response: 1, Energy: 2.e6}
	)
	total, err := NewTally(1, []filter.Filter{energyF, meshF}, []types.ScoreKind{types.ScoreTotal},
		types.TrackLength, types.CurrentNet)
	require.NoError(b, err)
	current, err := NewTally(2, []filter.Filter{surfF}, []types.ScoreKind{types.ScoreCurrent},
		types.TrackLength, types.CurrentNet)
	require.NoError(b, err)
	both, err := NewTally(3, []filter.Filter{meshF, surfF}, []types.ScoreKind{types.ScoreCurrent},
		types.TrackLength, types.CurrentNet)
	require.NoError(b, err)
	for name, tl := range map[string]*Tally{"total": total, "current": current, "mesh x current": both} {
		r := NewRegistry(tl)
		acc := r.NewAccumulator()
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.Score(ev, &ws, acc)
			}
		})
	}
}
