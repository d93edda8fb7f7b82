package qem

import (
	"container/heap"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlod/pkg/math"
	"github.com/Faultbox/meshlod/pkg/mesh"
)

// MinVertices is the live vertex floor a simplification never goes below.
const MinVertices = 3

// Stats describes one simplification run.
type Stats struct {
	Placement        Placement
	SourceVertices   int
	SourceTriangles  int
	TargetVertices   int
	ResultVertices   int
	ResultTriangles  int
	Collapses        int
	StalePops        int // edges whose endpoints already share a root
	SupersededPops   int // edges re-queued with fresher costs after a neighbour collapsed
	RejectedPops     int // collapses refused because no triangle would survive
	DroppedTriangles int
	Duration         time.Duration
}

// Observer receives the statistics of every simplification run.
type Observer interface {
	ObserveSimplify(Stats)
}

type options struct {
	placement Placement
	weld      float32
	logger    *zap.Logger
	observer  Observer
}

// Option configures Simplify.
type Option func(*options)

// WithPlacement selects the collapse target policy.
func WithPlacement(p Placement) Option {
	return func(o *options) { o.placement = p }
}

// WithWeld merges positions that fall in the same epsilon sized cell before
// simplifying, so implicit triangle soups gain shared edges. Zero disables it.
func WithWeld(epsilon float32) Option {
	return func(o *options) { o.weld = epsilon }
}

// WithLogger sets the logger receiving a debug summary per run.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an observer notified after every run.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Simplify reduces src to roughly targetRatio of its vertices by quadric error
// edge collapse. The result is always explicitly indexed. A ratio of 1 or more,
// or a mesh without triangles, returns a copy of src.
func Simplify(src *mesh.Mesh, targetRatio float32, opts ...Option) *mesh.Mesh {
	out, _ := SimplifyWithStats(src, targetRatio, opts...)
	return out
}

// SimplifyWithStats is Simplify and also reports what the run did.
func SimplifyWithStats(src *mesh.Mesh, targetRatio float32, opts ...Option) (*mesh.Mesh, Stats) {
	o := options{placement: PlacementOptimal, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	stats := Stats{
		Placement:       o.placement,
		SourceVertices:  src.VertexCount(),
		SourceTriangles: src.TriangleCount(),
	}

	var out *mesh.Mesh
	if targetRatio >= 1 || stats.SourceTriangles == 0 {
		out = src.Clone()
		stats.TargetVertices = stats.SourceVertices
	} else {
		s := newSimplifier(src, o)
		if s.liveTriangles == 0 {
			out = src.Clone()
			stats.TargetVertices = stats.SourceVertices
		} else {
			stats.TargetVertices = targetVertices(s.active, targetRatio)
			s.run(stats.TargetVertices)
			out = s.emit(src.HasNormals())
			stats.Collapses = s.collapses
			stats.StalePops = s.stale
			stats.SupersededPops = s.superseded
			stats.RejectedPops = s.rejected
			stats.DroppedTriangles = s.dropped
		}
	}

	stats.ResultVertices = out.VertexCount()
	stats.ResultTriangles = out.TriangleCount()
	stats.Duration = time.Since(start)

	o.logger.Debug("simplified mesh",
		zap.Stringer("placement", o.placement),
		zap.Float32("ratio", targetRatio),
		zap.Int("vertices_in", stats.SourceVertices),
		zap.Int("vertices_out", stats.ResultVertices),
		zap.Int("triangles_in", stats.SourceTriangles),
		zap.Int("triangles_out", stats.ResultTriangles),
		zap.Int("collapses", stats.Collapses),
		zap.Int("stale", stats.StalePops),
		zap.Duration("took", stats.Duration),
	)
	if o.observer != nil {
		o.observer.ObserveSimplify(stats)
	}
	return out, stats
}

// targetVertices returns max(3, ceil(n * ratio)). Non-positive and NaN ratios
// clamp to the floor.
func targetVertices(n int, ratio float32) int {
	if !(ratio > 0) {
		return MinVertices
	}
	t := int(gomath.Ceil(float64(n) * float64(ratio)))
	return max(MinVertices, t)
}

// vertex is one arena slot of the working mesh.
type vertex struct {
	pos     math.Vec3
	q       Quadric
	tris    []int32
	parent  int32
	version int32
}

// edge is a queued collapse candidate. a < b always holds.
type edge struct {
	a, b     int32
	va, vb   int32 // endpoint versions when the cost was computed
	cost     float64
	target   math.Vec3
	sequence int
}

// edgeHeap orders candidates by cost, then by insertion sequence so equal cost
// edges pop in the order they were discovered.
type edgeHeap []edge

func (h edgeHeap) Len() int { return len(h) }
func (h edgeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].sequence < h[j].sequence
}
func (h edgeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x interface{}) {
	*h = append(*h, x.(edge))
}

func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[0 : n-1]
	return e
}

type simplifier struct {
	verts     []vertex
	triangles [][3]int32
	valid     []bool
	queue     edgeHeap
	placement Placement

	sequence      int
	live          int
	active        int // live roots referenced by at least one valid triangle
	liveTriangles int

	// scratch for neighbour collection during a collapse
	mark      []int
	markStamp int
	neighbors []int32

	collapses  int
	stale      int
	superseded int
	rejected   int
	dropped    int
}

func newSimplifier(src *mesh.Mesh, o options) *simplifier {
	s := &simplifier{placement: o.placement}

	n := len(src.Positions)
	s.verts = make([]vertex, n)
	for i, p := range src.Positions {
		s.verts[i].pos = p
		s.verts[i].parent = int32(i)
	}
	s.live = n
	s.mark = make([]int, n)

	// Welded duplicates start out merged into the first position of their cell.
	for i, canonical := range weldPositions(src.Positions, o.weld) {
		if canonical != int32(i) {
			s.verts[i].parent = canonical
			s.live--
		}
	}

	count := uint32(n)
	triCount := src.TriangleCount()
	s.triangles = make([][3]int32, triCount)
	s.valid = make([]bool, triCount)

	// Step 1: accumulate plane quadrics on every incident vertex.
	src.EachTriangle(func(i int, a, b, c uint32) {
		if a >= count || b >= count || c >= count {
			// Out of range triangles stay zeroed and are dropped at emission.
			return
		}
		s.triangles[i] = [3]int32{int32(a), int32(b), int32(c)}
		t := [3]int32{s.find(int32(a)), s.find(int32(b)), s.find(int32(c))}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			return
		}
		s.valid[i] = true
		s.liveTriangles++

		q := FromTriangle(s.verts[t[0]].pos, s.verts[t[1]].pos, s.verts[t[2]].pos)
		for _, v := range t {
			s.verts[v].q.Add(q)
			s.verts[v].tris = append(s.verts[v].tris, int32(i))
		}
	})

	// Positions no triangle uses never collapse and do not count toward the target.
	referenced := make([]bool, n)
	for i, t := range s.triangles {
		if !s.valid[i] {
			continue
		}
		for _, v := range t {
			if r := s.find(v); !referenced[r] {
				referenced[r] = true
				s.active++
			}
		}
	}

	// Step 2: queue every undirected edge once, in discovery order.
	seen := make(map[uint64]struct{}, triCount*3/2)
	for i, t := range s.triangles {
		if !s.valid[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := s.find(t[k]), s.find(t[(k+1)%3])
			if a > b {
				a, b = b, a
			}
			key := uint64(a)<<32 | uint64(uint32(b))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			s.queue = append(s.queue, s.candidate(a, b))
		}
	}
	heap.Init(&s.queue)
	return s
}

// weldPositions maps every position to the first position sharing its
// epsilon sized cell. It returns nil when welding is disabled.
func weldPositions(positions []math.Vec3, epsilon float32) []int32 {
	if !(epsilon > 0) {
		return nil
	}
	remap := make([]int32, len(positions))
	cells := make(map[[3]int64]int32, len(positions))
	for i, p := range positions {
		key := [3]int64{
			int64(gomath.Round(float64(p.X / epsilon))),
			int64(gomath.Round(float64(p.Y / epsilon))),
			int64(gomath.Round(float64(p.Z / epsilon))),
		}
		if first, ok := cells[key]; ok {
			remap[i] = first
			continue
		}
		cells[key] = int32(i)
		remap[i] = int32(i)
	}
	return remap
}

func (s *simplifier) candidate(a, b int32) edge {
	va, vb := &s.verts[a], &s.verts[b]
	q := Sum(va.q, vb.q)
	target := q.OptimalPoint(va.pos, vb.pos, s.placement)
	e := edge{
		a: a, b: b,
		va: va.version, vb: vb.version,
		cost:     q.Error(target),
		target:   target,
		sequence: s.sequence,
	}
	s.sequence++
	return e
}

func (s *simplifier) find(v int32) int32 {
	for s.verts[v].parent != v {
		// Path halving keeps chains short; correctness does not depend on it.
		s.verts[v].parent = s.verts[s.verts[v].parent].parent
		v = s.verts[v].parent
	}
	return v
}

func (s *simplifier) degenerate(t [3]int32) bool {
	a, b, c := s.find(t[0]), s.find(t[1]), s.find(t[2])
	return a == b || b == c || a == c
}

// run collapses edges until the referenced vertex count reaches target or the
// queue drains.
func (s *simplifier) run(target int) {
	for s.active > target && s.queue.Len() > 0 {
		e := heap.Pop(&s.queue).(edge)

		ra, rb := s.find(e.a), s.find(e.b)
		if ra == rb {
			s.stale++
			continue
		}
		if ra != e.a || rb != e.b || s.verts[ra].version != e.va || s.verts[rb].version != e.vb {
			// A fresher entry for the current roots was queued by the collapse
			// that changed them.
			s.superseded++
			continue
		}
		if s.shared(ra, rb) >= s.liveTriangles {
			s.rejected++
			continue
		}
		s.collapse(ra, rb, e.target)
	}
}

// shared counts live triangles that contain both roots and would vanish if the
// edge between them collapsed.
func (s *simplifier) shared(ra, rb int32) int {
	n := 0
	for _, ti := range s.verts[ra].tris {
		t := s.triangles[ti]
		if s.degenerate(t) {
			continue
		}
		hasB := false
		for _, v := range t {
			if s.find(v) == rb {
				hasB = true
				break
			}
		}
		if hasB {
			n++
		}
	}
	return n
}

// collapse merges the two roots into the lower index one.
func (s *simplifier) collapse(ra, rb int32, target math.Vec3) {
	winner, loser := ra, rb
	if loser < winner {
		winner, loser = loser, winner
	}
	w, l := &s.verts[winner], &s.verts[loser]

	w.pos = target
	w.q.Add(l.q)
	w.tris = append(w.tris, l.tris...)
	l.tris = nil
	l.parent = winner
	w.version++
	s.live--
	s.active--
	s.collapses++

	// Drop triangles the collapse flattened and recount the survivors.
	kept := w.tris[:0]
	for _, ti := range w.tris {
		if s.degenerate(s.triangles[ti]) {
			if s.valid[ti] {
				s.valid[ti] = false
				s.liveTriangles--
			}
			continue
		}
		kept = append(kept, ti)
	}
	w.tris = kept

	// Re-queue every edge around the survivor with its cumulative cost.
	s.markStamp++
	s.neighbors = s.neighbors[:0]
	for _, ti := range w.tris {
		for _, v := range s.triangles[ti] {
			r := s.find(v)
			if r == winner || s.mark[r] == s.markStamp {
				continue
			}
			s.mark[r] = s.markStamp
			s.neighbors = append(s.neighbors, r)
		}
	}
	for _, n := range s.neighbors {
		a, b := winner, n
		if a > b {
			a, b = b, a
		}
		heap.Push(&s.queue, s.candidate(a, b))
	}
}

// emit walks the original triangles and builds the reduced mesh, numbering
// surviving roots in first-use order.
func (s *simplifier) emit(normals bool) *mesh.Mesh {
	out := &mesh.Mesh{}
	index := make(map[int32]uint32, s.live)

	for _, t := range s.triangles {
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			s.dropped++
			continue
		}
		var r [3]int32
		for k, v := range t {
			r[k] = s.find(v)
		}
		if r[0] == r[1] || r[1] == r[2] || r[0] == r[2] {
			s.dropped++
			continue
		}
		for _, root := range r {
			idx, ok := index[root]
			if !ok {
				idx = uint32(len(out.Positions))
				index[root] = idx
				out.Positions = append(out.Positions, s.verts[root].pos)
			}
			out.Indices = append(out.Indices, idx)
		}
	}

	if normals {
		out.ComputeNormals()
	}
	return out
}
