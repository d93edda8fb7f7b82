// Package mesh provides the triangle mesh representation consumed and emitted by
// the simplifier and the LOD level sets.
package mesh

import (
	"github.com/Faultbox/meshlod/pkg/math"
)

// Mesh holds positions, optional per-vertex normals and optional triangle indices.
//
// When Indices is empty the mesh is implicit: every three consecutive positions
// form one triangle. Normals is either empty or the same length as Positions.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Midpoint(b.Max)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}

// IsIndexed reports whether the mesh carries an explicit index list.
func (m *Mesh) IsIndexed() bool {
	return len(m.Indices) > 0
}

// HasNormals reports whether the mesh carries normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// TriangleCount returns the number of triangles in either layout.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	if m.IsIndexed() {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	if m.IsIndexed() {
		return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	}
	base := uint32(3 * i)
	return base, base + 1, base + 2
}

// EachTriangle calls fn for every triangle in order.
func (m *Mesh) EachTriangle(fn func(i int, a, b, c uint32)) {
	n := m.TriangleCount()
	for i := 0; i < n; i++ {
		a, b, c := m.Triangle(i)
		fn(i, a, b, c)
	}
}

// Clone returns a deep copy of the mesh with the same layout.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return &Mesh{}
	}
	out := &Mesh{}
	if len(m.Positions) > 0 {
		out.Positions = append([]math.Vec3(nil), m.Positions...)
	}
	if len(m.Normals) > 0 {
		out.Normals = append([]math.Vec3(nil), m.Normals...)
	}
	if len(m.Indices) > 0 {
		out.Indices = append([]uint32(nil), m.Indices...)
	}
	return out
}

// Indexed returns a copy of the mesh with an explicit index list.
// An already indexed mesh is simply cloned.
func (m *Mesh) Indexed() *Mesh {
	out := m.Clone()
	if out.IsIndexed() {
		return out
	}
	n := out.TriangleCount() * 3
	out.Indices = make([]uint32, n)
	for i := range out.Indices {
		out.Indices[i] = uint32(i)
	}
	return out
}

// Bounds computes the axis-aligned bounding box of all positions.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// ComputeNormals replaces the normals with area-weighted smooth vertex normals.
// Vertices not referenced by any triangle get an up vector.
func (m *Mesh) ComputeNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	count := len(m.Positions)

	m.EachTriangle(func(_ int, a, b, c uint32) {
		if int(a) >= count || int(b) >= count || int(c) >= count {
			return
		}
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		// Unnormalized cross product weights each face by its area.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	})

	for i := range normals {
		normals[i] = normalizeOrUp(normals[i])
	}
	m.Normals = normals
}

func normalizeOrUp(v math.Vec3) math.Vec3 {
	if v.Length() < 1e-12 || !v.IsFinite() {
		return math.Vec3{X: 0, Y: 1, Z: 0}
	}
	return v.Normalize()
}
