package mesh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// degenerateIntersections counts rays tangent to a quadric or lying in a
	// plane, which produce no crossing of that surface.
	// Labels: surface (axisplane, zcylinder, sphere, zcone, halfplane)
	degenerateIntersections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meshtally",
		Subsystem: "mesh",
		Name:      "degenerate_intersections_total",
		Help:      "Tangent or in-surface rays that yield no crossing",
	}, []string{"surface"})
)
