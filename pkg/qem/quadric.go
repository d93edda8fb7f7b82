// Package qem implements quadric error metric mesh simplification by iterative
// edge collapse.
package qem

import (
	gomath "math"

	"github.com/Faultbox/meshlod/pkg/math"
)

const (
	// DegenerateEpsilon is the cross product length below which a triangle is
	// treated as having no area.
	DegenerateEpsilon = 1e-10

	// SingularTolerance is the determinant magnitude below which the optimal
	// placement system is treated as singular.
	SingularTolerance = 1e-12
)

// Placement selects how the collapse target of an edge is chosen.
type Placement int

const (
	// PlacementOptimal solves for the error minimizing position and falls back to
	// the edge midpoint when the system is singular.
	PlacementOptimal Placement = iota
	// PlacementMidpoint always uses the edge midpoint.
	PlacementMidpoint
)

// String returns the config name of the placement policy.
func (p Placement) String() string {
	switch p {
	case PlacementMidpoint:
		return "midpoint"
	default:
		return "optimal"
	}
}

// ParsePlacement converts a config name to a Placement. Unknown names map to
// PlacementOptimal.
func ParsePlacement(s string) Placement {
	if s == "midpoint" {
		return PlacementMidpoint
	}
	return PlacementOptimal
}

// Quadric is the symmetric 4x4 matrix sum of plane outer products, stored as
// its 10 upper-triangle coefficients:
//
//	aa ab ac ad
//	   bb bc bd
//	      cc cd
//	         dd
type Quadric [10]float64

// FromTriangle returns the quadric of the plane through a, b and c.
// Triangles without area contribute the zero quadric.
func FromTriangle(a, b, c math.Vec3) Quadric {
	ax, ay, az := a.Float64()
	bx, by, bz := b.Float64()
	cx, cy, cz := c.Float64()

	e1x, e1y, e1z := bx-ax, by-ay, bz-az
	e2x, e2y, e2z := cx-ax, cy-ay, cz-az
	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x

	length := gomath.Sqrt(nx*nx + ny*ny + nz*nz)
	if !(length >= DegenerateEpsilon) || gomath.IsInf(length, 0) {
		return Quadric{}
	}
	nx, ny, nz = nx/length, ny/length, nz/length
	d := -(nx*ax + ny*ay + nz*az)

	return fromPlane(nx, ny, nz, d)
}

func fromPlane(a, b, c, d float64) Quadric {
	return Quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

// Add accumulates o into q.
func (q *Quadric) Add(o Quadric) {
	for i := range q {
		q[i] += o[i]
	}
}

// Sum returns a + b.
func Sum(a, b Quadric) Quadric {
	a.Add(b)
	return a
}

// IsZero reports whether every coefficient is zero.
func (q Quadric) IsZero() bool {
	return q == Quadric{}
}

// Error evaluates the quadric at v, the sum of squared distances from v to the
// accumulated planes. Positions that are not finite cost +Inf.
func (q Quadric) Error(v math.Vec3) float64 {
	if !v.IsFinite() {
		return gomath.Inf(1)
	}
	x, y, z := v.Float64()
	e := q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
	if gomath.IsNaN(e) {
		return gomath.Inf(1)
	}
	// Rounding can push an exact zero slightly negative.
	if e < 0 {
		return 0
	}
	return e
}

// Solve returns the position minimizing the quadric, or ok=false when the
// system is singular or the solution is not finite.
func (q Quadric) Solve() (p math.Vec3, ok bool) {
	a00, a01, a02 := q[0], q[1], q[2]
	a11, a12 := q[4], q[5]
	a22 := q[7]
	b0, b1, b2 := -q[3], -q[6], -q[8]

	det := a00*(a11*a22-a12*a12) - a01*(a01*a22-a12*a02) + a02*(a01*a12-a11*a02)
	if !(gomath.Abs(det) >= SingularTolerance) {
		return math.Vec3{}, false
	}

	// Cramer's rule over the symmetric system.
	x := (b0*(a11*a22-a12*a12) - a01*(b1*a22-a12*b2) + a02*(b1*a12-a11*b2)) / det
	y := (a00*(b1*a22-a12*b2) - b0*(a01*a22-a12*a02) + a02*(a01*b2-b1*a02)) / det
	z := (a00*(a11*b2-b1*a12) - a01*(a01*b2-b1*a02) + b0*(a01*a12-a11*a02)) / det

	p = math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
	if !p.IsFinite() {
		return math.Vec3{}, false
	}
	return p, true
}

// OptimalPoint returns the position that replaces both endpoints of the edge
// (v1, v2) when it collapses.
func (q Quadric) OptimalPoint(v1, v2 math.Vec3, policy Placement) math.Vec3 {
	if policy == PlacementOptimal {
		if p, ok := q.Solve(); ok {
			return p
		}
	}
	return v1.Midpoint(v2)
}
