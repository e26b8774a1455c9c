package mesh

import (
	"math/rand/v2"
	"testing"

	"github.com/notargets/meshtally/utils"
)

// randomSegments returns n segments with endpoints spread over a cube of
// half width w, so most of them cross many cells
func randomSegments(n int, w float64) (segs [][2]utils.Vec3) {
	var (
		rng = rand.New(rand.NewPCG(1, 2))
	)
	point := func() utils.Vec3 {
		return utils.Vec3{w * (2*rng.Float64() - 1), w * (2*rng.Float64() - 1), w * (2*rng.Float64() - 1)}
	}
	segs = make([][2]utils.Vec3, n)
	for i := range segs {
		segs[i] = [2]utils.Vec3{point(), point()}
	}
	return
}

func BenchmarkCrossings(b *testing.B) {
	var (
		rect, _, cyl, sph = testMeshes(b)
		segs              = randomSegments(1024, 10)
		ws                Workspace
	)
	for _, m := range []Mesh{rect, cyl, sph} {
		b.Run(m.Type().String(), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s := segs[i%len(segs)]
				ws.Crossings(m, s[0], s[1])
			}
		})
	}
}

func BenchmarkTrack(b *testing.B) {
	var (
		rect, _, cyl, sph = testMeshes(b)
		segs              = randomSegments(1024, 10)
		ws                Workspace
	)
	for _, m := range []Mesh{rect, cyl, sph} {
		b.Run(m.Type().String(), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s := segs[i%len(segs)]
				ws.Track(m, s[0], s[1])
			}
		})
	}
}
