package tally

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsScored counts events that contributed to at least one bin.
	// Labels: tally
	eventsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "tally",
		Name:      "events_scored_total",
		Help:      "Transport events contributing to a tally",
	}, []string{"tally"})

	// eventsOutsideMesh counts events missing every mesh of a spatial filter
	// of the tally.
	// Labels: tally
	eventsOutsideMesh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "tally",
		Name:      "events_outside_mesh_total",
		Help:      "Transport events outside every mesh referenced by a tally",
	}, []string{"tally"})
)
