package tally

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

// Tally scores events over the cross product of its filters' bins. The
// combined bin is the mixed radix number of the filter bins, first filter
// slowest.
type Tally struct {
	ID          int
	Filters     []filter.Filter
	Scores      []types.ScoreKind
	Estimator   types.Estimator
	CurrentMode types.CurrentMode
	Radix       utils.MixedRadix
	index       int // position among the tallies sharing an accumulator
	surface     int // position of the meshsurface filter, -1 without one
	scored      prometheus.Counter
	outside     prometheus.Counter
}

// NewTally checks the score and filter pairing rules: current needs exactly
// one meshsurface filter and no total beside it, total may not use a
// meshsurface filter, the collision estimator may not use one either.
func NewTally(id int, filters []filter.Filter, scores []types.ScoreKind,
	est types.Estimator, mode types.CurrentMode) (t *Tally, err error) {
	var (
		errs                 []error
		nSurface             int
		hasTotal, hasCurrent bool
		radices              []int
		seenFilter           = make(map[int]bool)
		seenScore            = make(map[types.ScoreKind]bool)
	)
	fail := func(format string, args ...any) {
		errs = append(errs, types.NewConfigError("tally", id, format, args...))
	}
	if len(filters) == 0 {
		fail("no filters")
	}
	if len(scores) == 0 {
		fail("no scores")
	}
	for _, f := range filters {
		if seenFilter[f.ID()] {
			fail("filter %d listed twice", f.ID())
		}
		seenFilter[f.ID()] = true
		if f.Type() == types.FilterMeshSurface {
			nSurface++
		}
		radices = append(radices, f.BinCount())
	}
	for _, sk := range scores {
		if seenScore[sk] {
			fail("score %s listed twice", sk)
		}
		seenScore[sk] = true
		switch sk {
		case types.ScoreTotal:
			hasTotal = true
		case types.ScoreCurrent:
			hasCurrent = true
		}
	}
	if hasCurrent && nSurface != 1 {
		fail("current score needs exactly one meshsurface filter, have %d", nSurface)
	}
	if hasCurrent && hasTotal {
		fail("current and total scores cannot share a tally")
	}
	if hasTotal && nSurface > 0 {
		fail("total score cannot use a meshsurface filter")
	}
	if est == types.Collision && nSurface > 0 {
		fail("collision estimator cannot be used with meshsurface filters")
	}
	if err = errors.Join(errs...); err != nil {
		return
	}
	t = &Tally{
		ID:          id,
		Filters:     filters,
		Scores:      scores,
		Estimator:   est,
		CurrentMode: mode,
		surface:     -1,
		scored:      eventsScored.WithLabelValues(strconv.Itoa(id)),
		outside:     eventsOutsideMesh.WithLabelValues(strconv.Itoa(id)),
	}
	for i, f := range filters {
		if f.Type() == types.FilterMeshSurface {
			t.surface = i
		}
	}
	if t.Radix, err = utils.NewMixedRadix(radices...); err != nil {
		err = types.NewConfigError("tally", id, "%s", err.Error())
		t = nil
	}
	return
}

// Size is the number of accumulator entries, bins times scores
func (t *Tally) Size() int { return t.Radix.Size * len(t.Scores) }

// Accepts is true for the events of the tally's estimator
func (t *Tally) Accepts(kind filter.EventKind) bool {
	if t.Estimator == types.Collision {
		return kind == filter.CollisionEvent
	}
	return kind == filter.TrackEvent
}

// Score adds the contributions of ev to acc. An event some filter does not
// match is skipped and Score returns false.
func (t *Tally) Score(ev *filter.Event, ws *Workspace, acc *Accumulator) bool {
	var (
		nf = len(t.Filters)
		L  = ev.Length()
	)
	ws.reserve(nf)
	for i, f := range t.Filters {
		ws.matches[i] = f.Match(ev, &ws.Filter, ws.matches[i][:0])
		ws.lens[i] = len(ws.matches[i])
		if ws.lens[i] == 0 {
			if f.Type().IsSpatial() {
				t.outside.Inc()
				slog.Debug("event outside mesh", "tally", t.ID, "filter", f.ID(),
					"kind", ev.Kind.String(), "start", ev.Start.String())
			}
			return false
		}
	}
	od := &ws.odometer
	od.Lens, od.Pos = ws.lens[:nf], ws.pos[:nf]
	od.Reset()
	for ok := od.Valid(); ok; ok = od.Next() {
		var (
			lo, hi, sign = 0., L, 1.
		)
		for i := 0; i < nf; i++ {
			m := ws.matches[i][od.Pos[i]]
			if i != t.surface {
				lo, hi = max(lo, m.Lo), min(hi, m.Hi)
			}
			sign *= m.Sign
			ws.digits[i] = m.Bin
		}
		if ev.Kind == filter.TrackEvent {
			if t.surface >= 0 {
				d := ws.matches[t.surface][od.Pos[t.surface]].Lo
				if !t.holdsCrossing(ws, od.Pos, d) {
					continue
				}
				lo, hi = d, d
			} else if hi < lo {
				continue
			}
		}
		bin := t.Radix.Encode(ws.digits[:nf])
		for s, sk := range t.Scores {
			acc.Add(t.index, bin, s, Evaluate(sk, t.Estimator, t.CurrentMode, ev, lo, hi, sign))
		}
	}
	t.scored.Inc()
	return true
}

// holdsCrossing reports whether the matches selected by pos of every filter
// but the meshsurface one contain the crossing at distance d. Track intervals
// are taken as (Lo, Hi], so a crossing on a boundary shared by two cells
// belongs to the cell being exited. An interval starting at d holds it only
// when no interval of the same filter ends there, as when a track enters a
// mesh from outside.
func (t *Tally) holdsCrossing(ws *Workspace, pos []int, d float64) bool {
	for i := range t.Filters {
		if i == t.surface {
			continue
		}
		m := ws.matches[i][pos[i]]
		if m.Lo < d && d <= m.Hi {
			continue
		}
		if m.Lo != d {
			return false
		}
		for _, o := range ws.matches[i] {
			if o.Lo < d && d == o.Hi {
				return false
			}
		}
	}
	return true
}

// Label names a combined bin by the labels of its filter bins
func (t *Tally) Label(bin int, digits []int) string {
	var (
		parts = make([]string, len(t.Filters))
	)
	digits = t.Radix.Decode(bin, digits)
	for i, f := range t.Filters {
		parts[i] = f.Label(digits[i])
	}
	return strings.Join(parts, ", ")
}

// Describe summarizes the bin space of the tally
func (t *Tally) Describe() string {
	var (
		sb strings.Builder
	)
	fmt.Fprintf(&sb, "Tally[%d] %s", t.ID, t.Estimator)
	for i, f := range t.Filters {
		if i > 0 {
			sb.WriteString(" x")
		}
		fmt.Fprintf(&sb, " %s[%d](%d bins)", f.Type(), f.ID(), f.BinCount())
	}
	fmt.Fprintf(&sb, " = %d bins, scores %v", t.Radix.Size, t.Scores)
	if slices.Contains(t.Scores, types.ScoreCurrent) {
		fmt.Fprintf(&sb, " (%s)", t.CurrentMode)
	}
	return sb.String()
}

// Workspace is the per-goroutine scratch space for scoring
type Workspace struct {
	Filter   filter.Workspace
	matches  [][]filter.Match
	lens     []int
	pos      []int
	digits   []int
	odometer utils.Odometer
}

func (ws *Workspace) reserve(n int) {
	for len(ws.matches) < n {
		ws.matches = append(ws.matches, nil)
		ws.lens = append(ws.lens, 0)
		ws.pos = append(ws.pos, 0)
		ws.digits = append(ws.digits, 0)
	}
}
