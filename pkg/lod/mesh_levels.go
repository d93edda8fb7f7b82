package lod

import (
	gomath "math"

	"github.com/Faultbox/meshlod/pkg/mesh"
	"github.com/Faultbox/meshlod/pkg/qem"
)

// MeshLevel is one generated detail level.
type MeshLevel struct {
	Mesh           *mesh.Mesh
	Ratio          float32
	MaxDistance    float32
	ScreenCoverage float32
	TriangleCount  int
}

// MeshLevels is an ordered set of detail meshes, finest first.
type MeshLevels struct {
	table
	meshes    []*mesh.Mesh
	ratios    []float32
	triangles []int
}

type generateOptions struct {
	thresholds Thresholds
	simplify   []qem.Option
}

// GenerateOption configures GenerateMeshLevels.
type GenerateOption func(*generateOptions)

// WithThresholds replaces the default threshold ladder.
func WithThresholds(th Thresholds) GenerateOption {
	return func(o *generateOptions) { o.thresholds = th }
}

// WithSimplifyOptions passes options through to every qem.Simplify call.
func WithSimplifyOptions(opts ...qem.Option) GenerateOption {
	return func(o *generateOptions) { o.simplify = append(o.simplify, opts...) }
}

// GenerateMeshLevels builds levelCount levels from src. Level 0 is a copy of src
// and level i is src simplified at reductionFactor^i. Every level is simplified
// from src itself, never from the previous level.
//
// levelCount is clamped to at least 1 and a reductionFactor outside (0, 1)
// falls back to DefaultReductionFactor.
func GenerateMeshLevels(src *mesh.Mesh, levelCount int, reductionFactor float32, opts ...GenerateOption) *MeshLevels {
	o := generateOptions{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}
	if levelCount < 1 {
		levelCount = 1
	}
	if !(reductionFactor > 0 && reductionFactor < 1) {
		reductionFactor = DefaultReductionFactor
	}

	meshes := make([]*mesh.Mesh, levelCount)
	ratios := make([]float32, levelCount)
	ratio := float32(1)
	for i := range meshes {
		if i == 0 {
			meshes[i] = src.Clone()
		} else {
			meshes[i] = qem.Simplify(src, ratio, o.simplify...)
		}
		ratios[i] = ratio
		ratio *= reductionFactor
	}

	l := newMeshLevels(meshes, o.thresholds)
	l.ratios = ratios
	return l
}

// NewMeshLevels wraps prebuilt meshes, finest first, with the default
// thresholds. It panics if meshes is empty.
func NewMeshLevels(meshes []*mesh.Mesh) *MeshLevels {
	if len(meshes) == 0 {
		panic("lod: mesh level set needs at least one level")
	}
	l := newMeshLevels(append([]*mesh.Mesh(nil), meshes...), DefaultThresholds())
	for i, m := range l.meshes {
		l.ratios[i] = ratioOf(m, l.meshes[0])
	}
	return l
}

func newMeshLevels(meshes []*mesh.Mesh, th Thresholds) *MeshLevels {
	l := &MeshLevels{
		table:     newTable(len(meshes), th),
		meshes:    meshes,
		ratios:    make([]float32, len(meshes)),
		triangles: make([]int, len(meshes)),
	}
	for i, m := range meshes {
		l.triangles[i] = m.TriangleCount()
	}
	return l
}

func ratioOf(m, base *mesh.Mesh) float32 {
	if base.VertexCount() == 0 {
		return 1
	}
	r := float32(m.VertexCount()) / float32(base.VertexCount())
	return float32(gomath.Min(float64(r), 1))
}

// Level returns level i. It panics if i is out of range.
func (l *MeshLevels) Level(i int) MeshLevel {
	l.check(i)
	return MeshLevel{
		Mesh:           l.meshes[i],
		Ratio:          l.ratios[i],
		MaxDistance:    l.distances[i],
		ScreenCoverage: l.coverages[i],
		TriangleCount:  l.triangles[i],
	}
}

// Mesh returns the mesh of level i. It panics if i is out of range.
func (l *MeshLevels) Mesh(i int) *mesh.Mesh {
	l.check(i)
	return l.meshes[i]
}

// SelectByDistance returns the level for a viewer distance.
func (l *MeshLevels) SelectByDistance(d float32) MeshLevel {
	return l.Level(l.IndexByDistance(d))
}

// SelectByCoverage returns the level for a screen coverage.
func (l *MeshLevels) SelectByCoverage(c float32) MeshLevel {
	return l.Level(l.IndexByCoverage(c))
}
