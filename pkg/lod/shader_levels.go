package lod

// Complexity is the shader feature set of one level.
type Complexity struct {
	NormalMapping bool
	ShadowReceive bool
	Reflections   bool
	LightCount    int
}

// ShaderLadder derives a Complexity per level index. Each feature stays enabled
// up to and including its max level; a negative max level disables it.
type ShaderLadder struct {
	NormalMappingMaxLevel int `yaml:"normal_mapping_max_level"`
	ShadowReceiveMaxLevel int `yaml:"shadow_receive_max_level"`
	ReflectionsMaxLevel   int `yaml:"reflections_max_level"`
	MaxLights             int `yaml:"max_lights"`
	LightStep             int `yaml:"light_step"`
	MinLights             int `yaml:"min_lights"`
}

// DefaultShaderLadder returns normal mapping through level 1, shadows through
// level 2, reflections on level 0 only, and max(1, 8-2i) lights.
func DefaultShaderLadder() ShaderLadder {
	return ShaderLadder{
		NormalMappingMaxLevel: 1,
		ShadowReceiveMaxLevel: 2,
		ReflectionsMaxLevel:   0,
		MaxLights:             8,
		LightStep:             2,
		MinLights:             1,
	}
}

// Complexity returns the feature set for level i.
func (s ShaderLadder) Complexity(i int) Complexity {
	return Complexity{
		NormalMapping: i <= s.NormalMappingMaxLevel,
		ShadowReceive: i <= s.ShadowReceiveMaxLevel,
		Reflections:   i <= s.ReflectionsMaxLevel,
		LightCount:    max(s.MinLights, s.MaxLights-s.LightStep*i),
	}
}

// ShaderLevel is one shader complexity level.
type ShaderLevel struct {
	Complexity
	MaxDistance    float32
	ScreenCoverage float32
}

// ShaderLevels is an ordered set of shader complexities, richest first.
type ShaderLevels struct {
	table
	complexities []Complexity
}

// NewShaderLevels builds levelCount levels from a ladder. levelCount is clamped
// to at least 1.
func NewShaderLevels(levelCount int, ladder ShaderLadder) *ShaderLevels {
	if levelCount < 1 {
		levelCount = 1
	}
	l := &ShaderLevels{
		table:        newTable(levelCount, DefaultThresholds()),
		complexities: make([]Complexity, levelCount),
	}
	for i := range l.complexities {
		l.complexities[i] = ladder.Complexity(i)
	}
	return l
}

// NewShaderLevelsFrom builds a set from explicit levels. It panics if levels is
// empty.
func NewShaderLevelsFrom(levels []ShaderLevel) *ShaderLevels {
	if len(levels) == 0 {
		panic("lod: shader level set needs at least one level")
	}
	l := &ShaderLevels{
		table:        newTable(len(levels), DefaultThresholds()),
		complexities: make([]Complexity, len(levels)),
	}
	for i, lv := range levels {
		l.complexities[i] = lv.Complexity
		l.distances[i] = lv.MaxDistance
		l.coverages[i] = lv.ScreenCoverage
	}
	return l
}

// Level returns level i. It panics if i is out of range.
func (l *ShaderLevels) Level(i int) ShaderLevel {
	l.check(i)
	return ShaderLevel{
		Complexity:     l.complexities[i],
		MaxDistance:    l.distances[i],
		ScreenCoverage: l.coverages[i],
	}
}

// Complexity returns the feature set of level i. It panics if i is out of range.
func (l *ShaderLevels) Complexity(i int) Complexity {
	l.check(i)
	return l.complexities[i]
}

// SelectByDistance returns the level for a viewer distance.
func (l *ShaderLevels) SelectByDistance(d float32) ShaderLevel {
	return l.Level(l.IndexByDistance(d))
}

// SelectByCoverage returns the level for a screen coverage.
func (l *ShaderLevels) SelectByCoverage(c float32) ShaderLevel {
	return l.Level(l.IndexByCoverage(c))
}
