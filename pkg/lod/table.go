// Package lod selects among precomputed detail levels for meshes, textures and
// shader complexity from viewer distance or projected screen coverage.
package lod

import (
	"fmt"
	gomath "math"
)

const (
	// DefaultBaseDistance is the max distance of level 0; level i doubles it i times.
	DefaultBaseDistance float32 = 10
	// DefaultBaseCoverage is the screen coverage of level 0; level i halves it i times.
	DefaultBaseCoverage float32 = 0.5
	// DefaultReductionFactor is the ratio multiplier between consecutive mesh levels.
	DefaultReductionFactor float32 = 0.5
)

// Thresholds sets the start of the default threshold ladder.
type Thresholds struct {
	BaseDistance float32
	BaseCoverage float32
}

// DefaultThresholds returns the 10/0.5 ladder.
func DefaultThresholds() Thresholds {
	return Thresholds{BaseDistance: DefaultBaseDistance, BaseCoverage: DefaultBaseCoverage}
}

// Mode selects which scalar a controller update carries.
type Mode int

const (
	// ByDistance interprets update values as distance from the viewer.
	ByDistance Mode = iota
	// ByCoverage interprets update values as normalized screen coverage.
	ByCoverage
)

// String returns the config name of the mode.
func (m Mode) String() string {
	if m == ByCoverage {
		return "coverage"
	}
	return "distance"
}

// ParseMode converts a config name to a Mode. Unknown names map to ByDistance.
func ParseMode(s string) Mode {
	if s == "coverage" {
		return ByCoverage
	}
	return ByDistance
}

// table holds the threshold columns and bias shared by every level set kind.
// Scans are linear because thresholds may be non-monotonic after an override.
type table struct {
	distances []float32
	coverages []float32
	bias      float32
}

func newTable(n int, th Thresholds) table {
	t := table{
		distances: make([]float32, n),
		coverages: make([]float32, n),
		bias:      1,
	}
	t.ApplyThresholds(th)
	return t
}

// Len returns the number of levels.
func (t *table) Len() int {
	return len(t.distances)
}

// Bias returns the multiplier applied to query values.
func (t *table) Bias() float32 {
	return t.bias
}

// SetBias sets the query multiplier. Non-positive, NaN and infinite values are
// ignored.
func (t *table) SetBias(b float32) {
	if b > 0 && !gomath.IsInf(float64(b), 0) {
		t.bias = b
	}
}

// ApplyThresholds rebuilds both columns from a ladder: distance base*2^i and
// coverage base/2^i.
func (t *table) ApplyThresholds(th Thresholds) {
	scale := float32(1)
	for i := range t.distances {
		t.distances[i] = th.BaseDistance * scale
		t.coverages[i] = th.BaseCoverage / scale
		scale *= 2
	}
}

// SetDistances overrides the max distance of the first len(d) levels.
func (t *table) SetDistances(d []float32) {
	copy(t.distances, d)
}

// SetCoverages overrides the screen coverage of the first len(c) levels.
func (t *table) SetCoverages(c []float32) {
	copy(t.coverages, c)
}

// MaxDistance returns the distance threshold of level i.
func (t *table) MaxDistance(i int) float32 {
	t.check(i)
	return t.distances[i]
}

// ScreenCoverage returns the coverage threshold of level i.
func (t *table) ScreenCoverage(i int) float32 {
	t.check(i)
	return t.coverages[i]
}

// IndexByDistance returns the first level whose max distance exceeds d*bias,
// or the last level.
func (t *table) IndexByDistance(d float32) int {
	return t.indexByDistance(d, t.bias)
}

// IndexByCoverage returns the first level whose coverage threshold is exceeded
// by c/bias, or the last level.
func (t *table) IndexByCoverage(c float32) int {
	return t.indexByCoverage(c, t.bias)
}

// Index dispatches to IndexByDistance or IndexByCoverage.
func (t *table) Index(mode Mode, value float32) int {
	return t.indexWithBias(mode, value, t.bias)
}

func (t *table) indexWithBias(mode Mode, value, bias float32) int {
	if mode == ByCoverage {
		return t.indexByCoverage(value, bias)
	}
	return t.indexByDistance(value, bias)
}

func (t *table) indexByDistance(d, bias float32) int {
	scaled := d * bias
	for i, maxDistance := range t.distances {
		if maxDistance > scaled {
			return i
		}
	}
	return len(t.distances) - 1
}

func (t *table) indexByCoverage(c, bias float32) int {
	scaled := c / bias
	for i, coverage := range t.coverages {
		if scaled > coverage {
			return i
		}
	}
	return len(t.coverages) - 1
}

func (t *table) check(i int) {
	if i < 0 || i >= len(t.distances) {
		panic(fmt.Sprintf("lod: level %d out of range [0, %d)", i, len(t.distances)))
	}
}
