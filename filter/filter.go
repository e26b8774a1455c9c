package filter

import (
	"fmt"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

type EventKind uint8

const (
	TrackEvent EventKind = iota
	CollisionEvent
)

func (k EventKind) String() string {
	return [...]string{"track", "collision"}[k]
}

// Event is one transport event handed to the tallies. A track runs from
// Start to End, a collision happens at Start.
type Event struct {
	Kind       EventKind
	Start, End utils.Vec3
	Weight     float64
	Response   float64 // score per unit track length, or per collision
	Energy     float64
}

func (ev *Event) Length() float64 {
	if ev.Kind == CollisionEvent {
		return 0
	}
	return ev.End.Sub(ev.Start).Norm()
}

// Match is one bin an event falls in. Lo and Hi bound the part of a track
// that belongs to the bin, Sign orients surface crossings.
type Match struct {
	Bin    int
	Lo, Hi float64
	Sign   float64
}

type Filter interface {
	ID() int
	Type() types.FilterType
	BinCount() int
	// Match appends the bins of ev to dst, none when the event is outside
	// the filter's domain
	Match(ev *Event, ws *Workspace, dst []Match) []Match
	Label(bin int) string
}

// Workspace is the scratch space of one goroutine
type Workspace struct {
	Mesh    mesh.Workspace
	surface []SurfaceBin
}

// meshSet lays the bins of several meshes end to end in declaration order
type meshSet struct {
	id      int
	Meshes  []mesh.Mesh
	offsets []int
	perCell []int
	nBins   int
}

func newMeshSet(id int, perCell func(m mesh.Mesh) int, meshes ...mesh.Mesh) (ms meshSet) {
	ms = meshSet{id: id, Meshes: meshes}
	for _, m := range meshes {
		ms.offsets = append(ms.offsets, ms.nBins)
		ms.perCell = append(ms.perCell, perCell(m))
		ms.nBins += m.BinCount() * perCell(m)
	}
	return
}

func (ms *meshSet) ID() int { return ms.id }

func (ms *meshSet) BinCount() int { return ms.nBins }

// locate returns the mesh a filter bin belongs to and the bin within it
func (ms *meshSet) locate(bin int) (k, local int) {
	if bin < 0 || bin >= ms.nBins {
		panic(fmt.Errorf("bin %d outside filter %d with %d bins", bin, ms.id, ms.nBins))
	}
	k = len(ms.offsets) - 1
	for ms.offsets[k] > bin {
		k--
	}
	local = bin - ms.offsets[k]
	return
}

func cellLabel(m mesh.Mesh, idx mesh.CellIndex) string {
	switch m.NDim() {
	case 1:
		return fmt.Sprintf("mesh %d (%d)", m.ID(), idx[0])
	case 2:
		return fmt.Sprintf("mesh %d (%d, %d)", m.ID(), idx[0], idx[1])
	default:
		return fmt.Sprintf("mesh %d (%d, %d, %d)", m.ID(), idx[0], idx[1], idx[2])
	}
}

// NewFromParameters builds a filter over already built meshes
func NewFromParameters(fp InputParameters.FilterParameters, meshes map[int]mesh.Mesh) (f Filter, err error) {
	var (
		ft   types.FilterType
		refs []mesh.Mesh
	)
	if ft, err = types.NewFilterType(fp.Type); err != nil {
		err = types.NewConfigError("filter", fp.ID, "%s", err.Error())
		return
	}
	if ft == types.FilterEnergy {
		return NewEnergyFilter(fp.ID, fp.Edges)
	}
	if len(fp.Bins) == 0 {
		err = types.NewConfigError("filter", fp.ID, "no meshes listed in bins")
		return
	}
	for _, id := range fp.Bins {
		m, ok := meshes[id]
		if !ok {
			err = types.NewConfigError("filter", fp.ID, "references nonexistent mesh %d", id)
			return
		}
		refs = append(refs, m)
	}
	if ft == types.FilterMesh {
		f = NewMeshFilter(fp.ID, refs...)
	} else {
		f = NewMeshSurfaceFilter(fp.ID, refs...)
	}
	return
}
