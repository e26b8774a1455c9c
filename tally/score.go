package tally

import (
	"math"

	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/types"
)

// Evaluate is the contribution of one combined match of ev to a score.
// [lo, hi] is the part of a track shared by every filter's match, sign the
// product of their signs.
func Evaluate(sk types.ScoreKind, est types.Estimator, mode types.CurrentMode,
	ev *filter.Event, lo, hi, sign float64) (v float64) {
	switch sk {
	case types.ScoreTotal:
		if est == types.Collision {
			v = ev.Weight * ev.Response
		} else {
			v = ev.Weight * ev.Response * (hi - lo)
		}
	case types.ScoreCurrent:
		if mode == types.CurrentUnsigned {
			v = math.Abs(ev.Weight)
		} else {
			v = ev.Weight * sign
		}
	default:
		panic("unknown score kind " + sk.String())
	}
	return
}
