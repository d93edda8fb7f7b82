package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshlod/pkg/mesh"
	"github.com/Faultbox/meshlod/pkg/qem"
)

func TestObserveSimplify(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSimplify(reg)

	m.ObserveSimplify(qem.Stats{
		Placement:        qem.PlacementOptimal,
		Collapses:        5,
		StalePops:        2,
		SupersededPops:   7,
		DroppedTriangles: 3,
		Duration:         2 * time.Millisecond,
	})
	m.ObserveSimplify(qem.Stats{
		Placement: qem.PlacementMidpoint,
		Collapses: 1,
	})

	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("optimal")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("midpoint")))
	require.Equal(t, float64(5), testutil.ToFloat64(m.collapses.WithLabelValues("optimal")))
	require.Equal(t, float64(3), testutil.ToFloat64(m.droppedTriangles.WithLabelValues("optimal")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.discardedPops.WithLabelValues("optimal", "stale")))
	require.Equal(t, float64(7), testutil.ToFloat64(m.discardedPops.WithLabelValues("optimal", "superseded")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.discardedPops.WithLabelValues("optimal", "rejected")))
	require.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSimplify(reg)

	require.Panics(t, func() { NewSimplify(reg) }, "duplicate registration must fail")
	require.NotPanics(t, func() { NewSimplify(nil) })
}

func TestObserverWiredIntoSimplify(t *testing.T) {
	m := NewSimplify(prometheus.NewRegistry())

	out := qem.Simplify(mesh.NewUVSphere(8, 12), 0.3, qem.WithObserver(m))
	require.NotZero(t, out.TriangleCount())

	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("optimal")))
	require.Positive(t, testutil.ToFloat64(m.collapses.WithLabelValues("optimal")))
}
