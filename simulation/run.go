package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/filter"
	"github.com/notargets/meshtally/tally"
	"github.com/notargets/meshtally/utils"
)

// tracker runs histories for one worker. Everything it touches is private to
// the worker except the registry, which is read only.
type tracker struct {
	source   Source
	medium   Medium
	registry *tally.Registry
	ws       tally.Workspace
	acc      *tally.Accumulator
	pcg      *rand.PCG
	unit     distuv.Uniform
	flight   distuv.Exponential
	ev       filter.Event
	roots    []float64
	seed     uint64
}

func newTracker(src Source, md Medium, r *tally.Registry, seed uint64) (tr *tracker) {
	tr = &tracker{
		source:   src,
		medium:   md,
		registry: r,
		acc:      r.NewAccumulator(),
		pcg:      rand.NewPCG(seed, 0),
		seed:     seed,
	}
	tr.unit = distuv.Uniform{Min: 0, Max: 1, Src: tr.pcg}
	tr.flight = distuv.Exponential{Rate: md.TotalXS, Src: tr.pcg}
	return
}

// history transports one particle from birth to leakage, absorption or
// energy cutoff. Its random stream depends only on the seed and the global
// history number.
func (tr *tracker) history(stream uint64) (reason string) {
	tr.pcg.Seed(tr.seed, stream)
	var (
		md     = tr.medium
		p      = tr.source.Sample(&tr.unit)
		energy = tr.source.Energy
		weight = 1.
		escape float64
	)
	for {
		u := isotropic(&tr.unit)
		d := tr.flight.Rand()
		escape, tr.roots = md.Escape(p, u, tr.roots)
		if escape <= d {
			tr.track(p, p.At(u, escape), weight, energy)
			return "leak"
		}
		q := p.At(u, d)
		if utils.IsNan(q) {
			panic(fmt.Errorf("history %d: position is NaN after flight %g from %v", stream, d, p))
		}
		tr.track(p, q, weight, energy)
		tr.collide(q, weight, energy)
		p = q
		if tr.unit.Rand() < md.Absorption {
			return "absorbed"
		}
		if energy *= 1 - md.EnergyLoss; energy < md.Cutoff {
			return "cutoff"
		}
	}
}

func (tr *tracker) track(start, end utils.Vec3, weight, energy float64) {
	if start == end {
		return
	}
	tr.ev = filter.Event{Kind: filter.TrackEvent, Start: start, End: end,
		Weight: weight, Response: tr.medium.Response, Energy: energy}
	tr.registry.Score(&tr.ev, &tr.ws, tr.acc)
}

// collide scores a collision; the response is divided by the total cross
// section so both estimators of total estimate the same quantity
func (tr *tracker) collide(at utils.Vec3, weight, energy float64) {
	tr.ev = filter.Event{Kind: filter.CollisionEvent, Start: at, End: at,
		Weight: weight, Response: tr.medium.Response / tr.medium.TotalXS, Energy: energy}
	tr.registry.Score(&tr.ev, &tr.ws, tr.acc)
}

// Run transports Settings.Batches batches of Settings.Particles histories,
// split across workers, and reduces each batch into the returned statistics.
// A cancelled context stops the run between histories; the partial batch is
// discarded and the statistics of the completed batches are returned with
// the context's error.
func Run(ctx context.Context, s InputParameters.Settings, r *tally.Registry) (st *tally.Statistics, err error) {
	var (
		src   Source
		md    = NewMedium(s.Medium)
		np    = utils.ParallelDegree(s.Workers, s.Particles)
		pm    = utils.NewPartitionMap(np, s.Particles)
		total = r.NewAccumulator()
	)
	if s.Batches < 1 || s.Particles < 1 {
		err = fmt.Errorf("need at least one batch of one particle, have %d of %d", s.Batches, s.Particles)
		return
	}
	if src, err = NewSource(s.Source); err != nil {
		return
	}
	trackers := make([]*tracker, np)
	for n := range trackers {
		trackers[n] = newTracker(src, md, r, s.Seed)
	}
	st = r.NewStatistics()
	slog.Info("run starting", "batches", s.Batches, "particles", s.Particles,
		"workers", np, "tallies", len(r.Tallies))
	for b := 0; b < s.Batches; b++ {
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for n := 0; n < np; n++ {
			g.Go(func() error {
				tr := trackers[n]
				kMin, kMax := pm.GetBucketRange(n)
				for h := kMin; h < kMax; h++ {
					if cErr := gctx.Err(); cErr != nil {
						return cErr
					}
					historyEnds.WithLabelValues(tr.history(uint64(b*s.Particles + h))).Inc()
					historiesRun.Inc()
				}
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			for _, tr := range trackers {
				tr.acc.Reset()
			}
			slog.Warn("batch discarded", "batch", b+1, "error", err)
			return
		}
		for _, tr := range trackers {
			total.Merge(tr.acc)
			tr.acc.Reset()
		}
		st.EndBatch(total, s.Particles)
		batchesRun.Inc()
		slog.Debug("batch complete", "batch", b+1, "elapsed", time.Since(start))
	}
	return
}

// Walk scores a polyline as one history: a track event per segment and a
// collision event at every interior vertex
func Walk(r *tally.Registry, ws *tally.Workspace, acc *tally.Accumulator,
	points []utils.Vec3, weight, response, energy float64) {
	var (
		ev filter.Event
	)
	for i := 1; i < len(points); i++ {
		if i > 1 {
			ev = filter.Event{Kind: filter.CollisionEvent, Start: points[i-1], End: points[i-1],
				Weight: weight, Response: response, Energy: energy}
			r.Score(&ev, ws, acc)
		}
		if points[i-1] == points[i] {
			continue
		}
		ev = filter.Event{Kind: filter.TrackEvent, Start: points[i-1], End: points[i],
			Weight: weight, Response: response, Energy: energy}
		r.Score(&ev, ws, acc)
	}
}
