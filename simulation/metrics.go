package simulation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	historiesRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "simulation",
		Name:      "histories_total",
		Help:      "Particle histories completed",
	})

	batchesRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "simulation",
		Name:      "batches_total",
		Help:      "Batches reduced into the run statistics",
	})

	// historyEnds counts how histories terminated.
	// Labels: reason (leak, absorbed, cutoff)
	historyEnds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "simulation",
		Name:      "history_ends_total",
		Help:      "Histories by termination reason",
	}, []string{"reason"})
)
