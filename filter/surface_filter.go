package filter

import (
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
)

// SurfaceBin is a crossing attributed to one face of one mesh cell
type SurfaceBin struct {
	Cell     mesh.CellIndex
	Face     types.SurfaceDirection
	Bin      int // cell bin * 2N + face
	Sign     float64
	Distance float64
}

// ClassifyCrossings attributes each crossing to a cell face. A crossing
// leaving a mesh cell belongs to that cell's face on the side of travel; one
// entering the mesh from outside belongs to the entered cell's face on the
// opposite side. Sign is +1 for travel toward increasing coordinate.
func ClassifyCrossings(m mesh.Mesh, crossings []mesh.Crossing, dst []SurfaceBin) []SurfaceBin {
	var (
		faces = 2 * m.NDim()
	)
	for _, c := range crossings {
		var sb SurfaceBin
		if m.Contains(c.From) {
			sb.Cell, sb.Face = c.From, types.NewSurfaceDirection(c.Axis, c.Positive)
		} else {
			sb.Cell, sb.Face = c.To, types.NewSurfaceDirection(c.Axis, !c.Positive)
		}
		sb.Bin = m.Bin(sb.Cell)*faces + int(sb.Face)
		sb.Sign = -1
		if c.Positive {
			sb.Sign = 1
		}
		sb.Distance = c.Distance
		dst = append(dst, sb)
	}
	return dst
}

// MeshSurfaceFilter bins track events by the cell faces they cross, 2N bins
// per cell of an N dimensional mesh.
type MeshSurfaceFilter struct {
	meshSet
}

func NewMeshSurfaceFilter(id int, meshes ...mesh.Mesh) *MeshSurfaceFilter {
	return &MeshSurfaceFilter{newMeshSet(id, func(m mesh.Mesh) int { return 2 * m.NDim() }, meshes...)}
}

func (f *MeshSurfaceFilter) Type() types.FilterType { return types.FilterMeshSurface }

func (f *MeshSurfaceFilter) Match(ev *Event, ws *Workspace, dst []Match) []Match {
	if ev.Kind != TrackEvent {
		return dst
	}
	for k, m := range f.Meshes {
		crossings := ws.Mesh.Crossings(m, ev.Start, ev.End)
		ws.surface = ClassifyCrossings(m, crossings, ws.surface[:0])
		for _, sb := range ws.surface {
			dst = append(dst, Match{Bin: f.offsets[k] + sb.Bin, Lo: sb.Distance, Hi: sb.Distance, Sign: sb.Sign})
		}
	}
	return dst
}

func (f *MeshSurfaceFilter) Label(bin int) string {
	k, local := f.locate(bin)
	m := f.Meshes[k]
	face := types.SurfaceDirection(local % f.perCell[k])
	return cellLabel(m, m.Index(local/f.perCell[k])) + " " + face.Label(m.Type())
}
