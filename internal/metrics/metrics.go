// Package metrics exports prometheus collectors for simplification runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Faultbox/meshlod/pkg/qem"
)

const (
	namespace      = "meshlod"
	placementLabel = "placement"
	popLabel       = "reason"
)

// Simplify collects counters and latencies of qem runs. It implements
// qem.Observer.
type Simplify struct {
	runs             *prometheus.CounterVec
	collapses        *prometheus.CounterVec
	discardedPops    *prometheus.CounterVec
	droppedTriangles *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// NewSimplify creates the collectors and registers them on reg. A nil
// registerer leaves them unregistered.
func NewSimplify(reg prometheus.Registerer) *Simplify {
	factory := promauto.With(reg)
	labels := []string{placementLabel}

	return &Simplify{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplify_runs_total",
			Help:      "The number of simplification runs.",
		}, labels),
		collapses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplify_collapses_total",
			Help:      "The number of applied edge collapses.",
		}, labels),
		discardedPops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplify_discarded_pops_total",
			Help:      "Queue entries popped without collapsing, by reason.",
		}, []string{placementLabel, popLabel}),
		droppedTriangles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplify_dropped_triangles_total",
			Help:      "Triangles removed from the output because they became degenerate.",
		}, labels),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simplify_duration_seconds",
			Help:      "The time to simplify one mesh.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, labels),
	}
}

// ObserveSimplify records one run.
func (s *Simplify) ObserveSimplify(st qem.Stats) {
	p := st.Placement.String()

	s.runs.With(prometheus.Labels{placementLabel: p}).Inc()
	s.collapses.With(prometheus.Labels{placementLabel: p}).Add(float64(st.Collapses))
	s.droppedTriangles.With(prometheus.Labels{placementLabel: p}).Add(float64(st.DroppedTriangles))
	s.duration.With(prometheus.Labels{placementLabel: p}).Observe(st.Duration.Seconds())

	s.instrumentPops(p, "stale", st.StalePops)
	s.instrumentPops(p, "superseded", st.SupersededPops)
	s.instrumentPops(p, "rejected", st.RejectedPops)
}

func (s *Simplify) instrumentPops(placement, reason string, n int) {
	s.discardedPops.
		With(prometheus.Labels{
			placementLabel: placement,
			popLabel:       reason,
		}).
		Add(float64(n))
}

var _ qem.Observer = (*Simplify)(nil)
