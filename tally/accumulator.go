package tally

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// layout places every (tally, bin, score) entry of a set of tallies in one
// flat array, tally by tally, bin major, score minor.
type layout struct {
	offsets []int
	nScores []int
	size    int
}

func newLayout(tallies []*Tally) (l *layout) {
	l = &layout{}
	for _, t := range tallies {
		l.offsets = append(l.offsets, l.size)
		l.nScores = append(l.nScores, len(t.Scores))
		l.size += t.Size()
	}
	return
}

func (l *layout) entry(tally, bin, score int) int {
	return l.offsets[tally] + bin*l.nScores[tally] + score
}

// Accumulator holds the batch sums of one worker. It is not safe for
// concurrent use; each worker owns one and they are merged at batch end.
type Accumulator struct {
	layout    *layout
	Sum, Sum2 []float64
}

func newAccumulator(l *layout) *Accumulator {
	return &Accumulator{
		layout: l,
		Sum:    make([]float64, l.size),
		Sum2:   make([]float64, l.size),
	}
}

// Add accumulates value for score index score of bin of the tally at
// position tally in the registry
func (acc *Accumulator) Add(tally, bin, score int, value float64) {
	i := acc.layout.entry(tally, bin, score)
	acc.Sum[i] += value
	acc.Sum2[i] += value * value
}

// Merge adds other into acc. Merging is associative and commutative up to
// floating point summation order.
func (acc *Accumulator) Merge(other *Accumulator) {
	if acc.layout != other.layout {
		panic(fmt.Errorf("merging accumulators of different tally sets"))
	}
	floats.Add(acc.Sum, other.Sum)
	floats.Add(acc.Sum2, other.Sum2)
}

func (acc *Accumulator) Reset() {
	for i := range acc.Sum {
		acc.Sum[i], acc.Sum2[i] = 0, 0
	}
}

// Statistics holds the lifetime sums of per-history batch means, one
// realization per batch
type Statistics struct {
	registry     *Registry
	Sum, Sum2    []float64
	Realizations int
}

// EndBatch normalizes the batch sums of acc by the number of histories run,
// adds them to the lifetime sums and resets acc for the next batch.
func (st *Statistics) EndBatch(acc *Accumulator, histories int) {
	if histories < 1 {
		panic(fmt.Errorf("batch of %d histories", histories))
	}
	floats.Scale(1./float64(histories), acc.Sum)
	floats.Add(st.Sum, acc.Sum)
	for i, x := range acc.Sum {
		st.Sum2[i] += x * x
	}
	st.Realizations++
	acc.Reset()
}

// meanStdErr returns the sample mean of n realizations and the standard
// error of that mean, zero below two realizations
func meanStdErr(sum, sum2 float64, n int) (mean, stdErr float64) {
	if n == 0 {
		return
	}
	mean = sum / float64(n)
	if n < 2 {
		return
	}
	variance := (sum2/float64(n) - mean*mean) / float64(n-1)
	if variance > 0 {
		stdErr = math.Sqrt(variance)
	}
	return
}

// Results reports mean and standard error per tally, bin and score
func (st *Statistics) Results() (results []Result) {
	var (
		l = st.registry.layout
	)
	for k, t := range st.registry.Tallies {
		r := Result{
			TallyID:      t.ID,
			Scores:       t.Scores,
			Realizations: st.Realizations,
			Mean:         make([][]float64, t.Radix.Size),
			StdErr:       make([][]float64, t.Radix.Size),
			tally:        t,
		}
		for _, f := range t.Filters {
			r.Shape = append(r.Shape, f.BinCount())
		}
		for bin := 0; bin < t.Radix.Size; bin++ {
			r.Mean[bin] = make([]float64, len(t.Scores))
			r.StdErr[bin] = make([]float64, len(t.Scores))
			for s := range t.Scores {
				i := l.entry(k, bin, s)
				r.Mean[bin][s], r.StdErr[bin][s] = meanStdErr(st.Sum[i], st.Sum2[i], st.Realizations)
			}
		}
		results = append(results, r)
	}
	return
}
