package filter

import (
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
)

// MeshFilter bins events by mesh cell. Tracks match every cell they pass
// through, with the sub-interval spent there, collisions match the cell of
// the site.
type MeshFilter struct {
	meshSet
}

func NewMeshFilter(id int, meshes ...mesh.Mesh) *MeshFilter {
	return &MeshFilter{newMeshSet(id, func(mesh.Mesh) int { return 1 }, meshes...)}
}

func (f *MeshFilter) Type() types.FilterType { return types.FilterMesh }

func (f *MeshFilter) Match(ev *Event, ws *Workspace, dst []Match) []Match {
	for k, m := range f.Meshes {
		off := f.offsets[k]
		if ev.Kind == CollisionEvent {
			if idx, inside := m.Locate(ev.Start); inside {
				dst = append(dst, Match{Bin: off + m.Bin(idx), Sign: 1})
			}
			continue
		}
		for _, s := range ws.Mesh.Track(m, ev.Start, ev.End) {
			dst = append(dst, Match{Bin: off + s.Bin, Lo: s.Lo, Hi: s.Hi, Sign: 1})
		}
	}
	return dst
}

func (f *MeshFilter) Label(bin int) string {
	k, local := f.locate(bin)
	m := f.Meshes[k]
	return cellLabel(m, m.Index(local))
}
