package lod

// TextureLevel is one texture resolution level.
type TextureLevel struct {
	Resolution     int
	MaxDistance    float32
	ScreenCoverage float32
}

// TextureLevels is an ordered set of texture resolutions, largest first.
type TextureLevels struct {
	table
	resolutions []int
}

// NewTextureLevels builds levelCount levels starting at baseResolution and
// halving per level, never below 1. levelCount is clamped to at least 1.
func NewTextureLevels(baseResolution, levelCount int) *TextureLevels {
	if levelCount < 1 {
		levelCount = 1
	}
	l := &TextureLevels{
		table:       newTable(levelCount, DefaultThresholds()),
		resolutions: make([]int, levelCount),
	}
	res := baseResolution
	for i := range l.resolutions {
		l.resolutions[i] = max(1, res)
		res /= 2
	}
	return l
}

// NewTextureLevelsFrom builds a set from explicit levels. It panics if levels
// is empty.
func NewTextureLevelsFrom(levels []TextureLevel) *TextureLevels {
	if len(levels) == 0 {
		panic("lod: texture level set needs at least one level")
	}
	l := &TextureLevels{
		table:       newTable(len(levels), DefaultThresholds()),
		resolutions: make([]int, len(levels)),
	}
	for i, lv := range levels {
		l.resolutions[i] = lv.Resolution
		l.distances[i] = lv.MaxDistance
		l.coverages[i] = lv.ScreenCoverage
	}
	return l
}

// Level returns level i. It panics if i is out of range.
func (l *TextureLevels) Level(i int) TextureLevel {
	l.check(i)
	return TextureLevel{
		Resolution:     l.resolutions[i],
		MaxDistance:    l.distances[i],
		ScreenCoverage: l.coverages[i],
	}
}

// Resolution returns the resolution of level i. It panics if i is out of range.
func (l *TextureLevels) Resolution(i int) int {
	l.check(i)
	return l.resolutions[i]
}

// SelectByDistance returns the level for a viewer distance.
func (l *TextureLevels) SelectByDistance(d float32) TextureLevel {
	return l.Level(l.IndexByDistance(d))
}

// SelectByCoverage returns the level for a screen coverage.
func (l *TextureLevels) SelectByCoverage(c float32) TextureLevel {
	return l.Level(l.IndexByCoverage(c))
}
