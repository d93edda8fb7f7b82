package lod

import gomath "math"

// Group keeps the parts of one logical object on the same detail level.
type Group struct {
	members []*MeshLevels
}

// NewGroup creates a group over the given members.
func NewGroup(members ...*MeshLevels) *Group {
	return &Group{members: members}
}

// Add appends a member.
func (g *Group) Add(m *MeshLevels) {
	g.members = append(g.members, m)
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// SetBias sets the bias of every member.
func (g *Group) SetBias(b float32) {
	for _, m := range g.members {
		m.SetBias(b)
	}
}

// IndexByDistance returns the finest level any member selects for d, so no part
// drops detail before the others. An empty group returns 0.
func (g *Group) IndexByDistance(d float32) int {
	return g.index(ByDistance, d)
}

// IndexByCoverage is IndexByDistance for a screen coverage value.
func (g *Group) IndexByCoverage(c float32) int {
	return g.index(ByCoverage, c)
}

func (g *Group) index(mode Mode, value float32) int {
	if len(g.members) == 0 {
		return 0
	}
	idx := gomath.MaxInt
	for _, m := range g.members {
		idx = min(idx, m.Index(mode, value))
	}
	return idx
}

// Select appends the level of every member at the group index to dst and
// returns it. The group index never exceeds any member's last level.
func (g *Group) Select(mode Mode, value float32, dst []MeshLevel) []MeshLevel {
	idx := g.index(mode, value)
	for _, m := range g.members {
		dst = append(dst, m.Level(idx))
	}
	return dst
}

// ScreenCoverage approximates the fraction of the vertical field of view covered
// by a bounding sphere of the given radius at distance, clamped to [0, 1].
// fovY is in radians. Invalid input yields 0.
func ScreenCoverage(radius, distance, fovY float32) float32 {
	if !(radius > 0) || !(fovY > 0) || fovY >= gomath.Pi {
		return 0
	}
	if distance <= radius {
		return 1
	}
	halfHeight := float64(distance) * gomath.Tan(float64(fovY)/2)
	c := float64(radius) / halfHeight
	if gomath.IsNaN(c) {
		return 0
	}
	return float32(gomath.Min(c, 1))
}
