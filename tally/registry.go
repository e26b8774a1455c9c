package tally

import (
	"errors"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/mesh"
	"github.com/notargets/meshtally/types"
)

// Registry is the immutable set of meshes, filters and tallies of a run,
// shared by every worker
type Registry struct {
	Meshes  []mesh.Mesh
	Filters []filter.Filter
	Tallies []*Tally
	layout  *layout
}

// NewRegistry numbers the tallies in the order given; that position is the
// tally argument of Accumulator.Add
func NewRegistry(tallies ...*Tally) (r *Registry) {
	r = &Registry{Tallies: tallies}
	for i, t := range tallies {
		t.index = i
	}
	r.layout = newLayout(tallies)
	return
}

// Build validates a scenario and constructs its meshes, filters and tallies.
// Every problem found is reported.
func Build(ip *InputParameters.InputParameters) (r *Registry, err error) {
	var (
		errs    []error
		meshes  []mesh.Mesh
		filters []filter.Filter
		tallies []*Tally
		meshMap = make(map[int]mesh.Mesh)
		fltMap  = make(map[int]filter.Filter)
	)
	if err = ip.Validate(); err != nil {
		return
	}
	for _, mp := range ip.Meshes {
		m, mErr := mesh.NewFromParameters(mp, ip.Settings.Epsilon)
		if mErr != nil {
			errs = append(errs, mErr)
			continue
		}
		meshes = append(meshes, m)
		meshMap[m.ID()] = m
	}
	for _, fp := range ip.Filters {
		f, fErr := filter.NewFromParameters(fp, meshMap)
		if fErr != nil {
			errs = append(errs, fErr)
			continue
		}
		filters = append(filters, f)
		fltMap[f.ID()] = f
	}
	for _, tp := range ip.Tallies {
		t, tErr := newTallyFromParameters(tp, fltMap)
		if tErr != nil {
			errs = append(errs, tErr)
			continue
		}
		tallies = append(tallies, t)
	}
	if err = errors.Join(errs...); err != nil {
		return
	}
	r = NewRegistry(tallies...)
	r.Meshes, r.Filters = meshes, filters
	return
}

func newTallyFromParameters(tp InputParameters.TallyParameters, filters map[int]filter.Filter) (t *Tally, err error) {
	var (
		errs   []error
		flts   []filter.Filter
		scores []types.ScoreKind
	)
	for _, id := range tp.Filters {
		f, ok := filters[id]
		if !ok {
			errs = append(errs, types.NewConfigError("tally", tp.ID, "references nonexistent filter %d", id))
			continue
		}
		flts = append(flts, f)
	}
	for _, name := range tp.Scores {
		sk, sErr := types.NewScoreKind(tp.ID, name)
		if sErr != nil {
			errs = append(errs, sErr)
			continue
		}
		scores = append(scores, sk)
	}
	est, eErr := types.NewEstimator(tp.Estimator)
	if eErr != nil {
		errs = append(errs, types.NewConfigError("tally", tp.ID, "%s", eErr.Error()))
	}
	mode, cErr := types.NewCurrentMode(tp.CurrentMode)
	if cErr != nil {
		errs = append(errs, types.NewConfigError("tally", tp.ID, "%s", cErr.Error()))
	}
	if err = errors.Join(errs...); err != nil {
		return
	}
	return NewTally(tp.ID, flts, scores, est, mode)
}

func (r *Registry) NewAccumulator() *Accumulator { return newAccumulator(r.layout) }

func (r *Registry) NewStatistics() *Statistics {
	return &Statistics{
		registry: r,
		Sum:      make([]float64, r.layout.size),
		Sum2:     make([]float64, r.layout.size),
	}
}

// Score hands ev to every tally whose estimator takes its kind, returning
// the number of tallies it contributed to
func (r *Registry) Score(ev *filter.Event, ws *Workspace, acc *Accumulator) (scored int) {
	for _, t := range r.Tallies {
		if t.Accepts(ev.Kind) && t.Score(ev, ws, acc) {
			scored++
		}
	}
	return
}
