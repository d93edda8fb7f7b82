package mesh

import (
	gomath "math"

	"github.com/Faultbox/meshlod/pkg/math"
)

// NewCube creates an indexed cube spanning [-1, 1] on every axis with 8 vertices
// and 12 outward-facing triangles.
func NewCube() *Mesh {
	return &Mesh{
		Positions: []math.Vec3{
			{X: -1, Y: -1, Z: -1},
			{X: 1, Y: -1, Z: -1},
			{X: 1, Y: 1, Z: -1},
			{X: -1, Y: 1, Z: -1},
			{X: -1, Y: -1, Z: 1},
			{X: 1, Y: -1, Z: 1},
			{X: 1, Y: 1, Z: 1},
			{X: -1, Y: 1, Z: 1},
		},
		Indices: []uint32{
			// Back
			0, 3, 2, 0, 2, 1,
			// Front
			4, 5, 6, 4, 6, 7,
			// Bottom
			0, 1, 5, 0, 5, 4,
			// Top
			3, 7, 6, 3, 6, 2,
			// Left
			0, 4, 7, 0, 7, 3,
			// Right
			1, 2, 6, 1, 6, 5,
		},
	}
}

// NewGrid creates a flat indexed grid of n x n quads in the XZ plane spanning
// [-1, 1]. n is clamped to at least 1.
func NewGrid(n int) *Mesh {
	if n < 1 {
		n = 1
	}
	stride := n + 1
	m := &Mesh{
		Positions: make([]math.Vec3, 0, stride*stride),
		Indices:   make([]uint32, 0, n*n*6),
	}
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			m.Positions = append(m.Positions, math.Vec3{
				X: -1 + 2*float32(x)/float32(n),
				Y: 0,
				Z: -1 + 2*float32(z)/float32(n),
			})
		}
	}
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			i := uint32(z*stride + x)
			s := uint32(stride)
			m.Indices = append(m.Indices, i, i+s, i+1, i+1, i+s, i+s+1)
		}
	}
	return m
}

// NewUVSphere creates an indexed unit sphere with the given number of rings
// (latitude bands) and segments (longitude slices), with smooth normals.
// rings is clamped to at least 2 and segments to at least 3.
func NewUVSphere(rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	m := &Mesh{}
	// Poles are single vertices so the surface is closed.
	m.Positions = append(m.Positions, math.Vec3{X: 0, Y: 1, Z: 0})
	for r := 1; r < rings; r++ {
		phi := gomath.Pi * float64(r) / float64(rings)
		y := float32(gomath.Cos(phi))
		sr := gomath.Sin(phi)
		for s := 0; s < segments; s++ {
			theta := 2 * gomath.Pi * float64(s) / float64(segments)
			m.Positions = append(m.Positions, math.Vec3{
				X: float32(sr * gomath.Cos(theta)),
				Y: y,
				Z: float32(sr * gomath.Sin(theta)),
			})
		}
	}
	south := uint32(len(m.Positions))
	m.Positions = append(m.Positions, math.Vec3{X: 0, Y: -1, Z: 0})

	ring := func(r, s int) uint32 {
		return uint32(1 + (r-1)*segments + s%segments)
	}
	for s := 0; s < segments; s++ {
		m.Indices = append(m.Indices, 0, ring(1, s+1), ring(1, s))
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			a, b := ring(r, s), ring(r, s+1)
			c, d := ring(r+1, s), ring(r+1, s+1)
			m.Indices = append(m.Indices, a, b, d, a, d, c)
		}
	}
	for s := 0; s < segments; s++ {
		m.Indices = append(m.Indices, south, ring(rings-1, s), ring(rings-1, s+1))
	}

	m.ComputeNormals()
	return m
}

// Unindexed expands an indexed mesh into the implicit layout where every three
// consecutive positions form a triangle.
func Unindexed(m *Mesh) *Mesh {
	if !m.IsIndexed() {
		return m.Clone()
	}
	out := &Mesh{Positions: make([]math.Vec3, 0, len(m.Indices))}
	if m.HasNormals() {
		out.Normals = make([]math.Vec3, 0, len(m.Indices))
	}
	for _, idx := range m.Indices {
		out.Positions = append(out.Positions, m.Positions[idx])
		if m.HasNormals() {
			out.Normals = append(out.Normals, m.Normals[idx])
		}
	}
	return out
}
