package tally

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/notargets/meshtally/types"
)

// Result is the final estimate of one tally, Mean and StdErr indexed
// [combined bin][score]
type Result struct {
	TallyID      int
	Shape        []int // bins per filter
	Scores       []types.ScoreKind
	Mean, StdErr [][]float64
	Realizations int
	tally        *Tally
}

func (r *Result) Label(bin int) string { return r.tally.Label(bin, nil) }

// RelativeError is the mean relative standard error over the entries with a
// nonzero mean, and the number of such entries
func (r *Result) RelativeError() (rel float64, nonZero int) {
	var (
		rels []float64
	)
	for bin := range r.Mean {
		for s, m := range r.Mean[bin] {
			if m != 0 {
				rels = append(rels, r.StdErr[bin][s]/math.Abs(m))
			}
		}
	}
	if nonZero = len(rels); nonZero > 0 {
		rel = stat.Mean(rels, nil)
	}
	return
}

// Print writes the nonzero bins, at most maxRows of them when maxRows > 0
func (r *Result) Print(w io.Writer, maxRows int) {
	var (
		rows    int
		rel, nz = r.RelativeError()
	)
	fmt.Fprintf(w, "%s, %d realizations\n", r.tally.Describe(), r.Realizations)
	fmt.Fprintf(w, "  %d nonzero entries, mean relative error %8.5f\n", nz, rel)
	for bin := range r.Mean {
		zero := true
		for _, m := range r.Mean[bin] {
			zero = zero && m == 0
		}
		if zero {
			continue
		}
		if maxRows > 0 && rows == maxRows {
			fmt.Fprintf(w, "  ... remaining bins omitted\n")
			break
		}
		fmt.Fprintf(w, "  %s\n", r.Label(bin))
		for s, sk := range r.Scores {
			fmt.Fprintf(w, "    %-8s %12.5e +/- %12.5e\n", sk, r.Mean[bin][s], r.StdErr[bin][s])
		}
		rows++
	}
}
