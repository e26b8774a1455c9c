package filter

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshtally/types"
)

// EnergyFilter bins events by group, edges[k] <= E < edges[k+1]
type EnergyFilter struct {
	id    int
	Edges []float64
}

func NewEnergyFilter(id int, edges []float64) (f *EnergyFilter, err error) {
	if len(edges) < 2 {
		err = types.NewConfigError("filter", id, "energy filter needs at least two edges")
		return
	}
	if floats.HasNaN(edges) || !sort.Float64sAreSorted(edges) {
		err = types.NewConfigError("filter", id, "energy edges %v are not increasing", edges)
		return
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			err = types.NewConfigError("filter", id, "repeated energy edge %g", edges[i])
			return
		}
	}
	f = &EnergyFilter{id: id, Edges: append([]float64(nil), edges...)}
	return
}

func (f *EnergyFilter) ID() int { return f.id }

func (f *EnergyFilter) Type() types.FilterType { return types.FilterEnergy }

func (f *EnergyFilter) BinCount() int { return len(f.Edges) - 1 }

func (f *EnergyFilter) Match(ev *Event, ws *Workspace, dst []Match) []Match {
	k := sort.Search(len(f.Edges), func(i int) bool { return f.Edges[i] > ev.Energy }) - 1
	if k < 0 || k >= f.BinCount() {
		return dst
	}
	return append(dst, Match{Bin: k, Lo: math.Inf(-1), Hi: math.Inf(1), Sign: 1})
}

func (f *EnergyFilter) Label(bin int) string {
	return fmt.Sprintf("E [%8.3e, %8.3e)", f.Edges[bin], f.Edges[bin+1])
}
