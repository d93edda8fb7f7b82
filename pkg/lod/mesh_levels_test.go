package lod

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshlod/pkg/mesh"
	"github.com/Faultbox/meshlod/pkg/qem"
)

func TestGenerateCubeLevels(t *testing.T) {
	cube := mesh.NewCube()
	levels := GenerateMeshLevels(cube, 4, 0.5)

	require.Equal(t, 4, levels.Len())
	require.Equal(t, cube, levels.Mesh(0))
	require.Equal(t, 0, levels.IndexByDistance(5))
	require.Equal(t, 2, levels.IndexByDistance(25))
	require.Same(t, levels.Mesh(0), levels.SelectByDistance(5).Mesh)
	require.Same(t, levels.Mesh(2), levels.SelectByDistance(25).Mesh)

	wantDistances := []float32{10, 20, 40, 80}
	wantCoverages := []float32{0.5, 0.25, 0.125, 0.0625}
	wantRatios := []float32{1, 0.5, 0.25, 0.125}
	for i := 0; i < levels.Len(); i++ {
		lv := levels.Level(i)
		require.Equal(t, wantDistances[i], lv.MaxDistance, "level %d", i)
		require.Equal(t, wantCoverages[i], lv.ScreenCoverage, "level %d", i)
		require.Equal(t, wantRatios[i], lv.Ratio, "level %d", i)
		require.Equal(t, lv.Mesh.TriangleCount(), lv.TriangleCount, "level %d", i)
		require.LessOrEqual(t, lv.TriangleCount, 12, "level %d", i)
	}
}

func TestGenerateFromOriginalSource(t *testing.T) {
	src := mesh.NewUVSphere(10, 16)
	levels := GenerateMeshLevels(src, 4, 0.5)

	ratio := float32(1)
	for i := 0; i < levels.Len(); i++ {
		require.Equal(t, qem.Simplify(src, ratio), levels.Mesh(i), "level %d", i)
		require.Equal(t, levels.Mesh(i), qem.Simplify(levels.Mesh(i), 1), "level %d", i)
		ratio *= 0.5
	}
	for i := 1; i < levels.Len(); i++ {
		require.LessOrEqual(t, levels.Level(i).TriangleCount, levels.Level(i-1).TriangleCount)
	}
}

func TestGenerateLevelZeroIsIndependentCopy(t *testing.T) {
	src := mesh.NewCube()
	levels := GenerateMeshLevels(src, 2, 0.5)

	levels.Mesh(0).Positions[0].X = 99
	require.NotEqual(t, float32(99), src.Positions[0].X)
}

func TestGenerateClampsArguments(t *testing.T) {
	src := mesh.NewUVSphere(6, 8)

	require.Equal(t, 1, GenerateMeshLevels(src, 0, 0.5).Len())
	require.Equal(t, 1, GenerateMeshLevels(src, -3, 0.5).Len())

	for _, factor := range []float32{0, -1, 1, 2} {
		levels := GenerateMeshLevels(src, 3, factor)
		require.Equal(t, DefaultReductionFactor, levels.Level(1).Ratio, "factor %v", factor)
	}
}

func TestGenerateOptions(t *testing.T) {
	src := mesh.NewUVSphere(8, 10)
	levels := GenerateMeshLevels(src, 3, 0.5,
		WithThresholds(Thresholds{BaseDistance: 5, BaseCoverage: 0.8}),
		WithSimplifyOptions(qem.WithPlacement(qem.PlacementMidpoint)),
	)

	require.Equal(t, float32(5), levels.MaxDistance(0))
	require.Equal(t, float32(20), levels.MaxDistance(2))
	require.Equal(t, float32(0.4), levels.ScreenCoverage(1))
	require.Equal(t, qem.Simplify(src, 0.5, qem.WithPlacement(qem.PlacementMidpoint)), levels.Mesh(1))
}

func TestSelectFallsBackToCoarsest(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 4, 0.5)

	require.Equal(t, 3, levels.IndexByDistance(80))
	require.Equal(t, 3, levels.IndexByDistance(1e9))
	require.Equal(t, 3, levels.IndexByCoverage(0))
	require.Same(t, levels.Mesh(3), levels.SelectByCoverage(0.01).Mesh)
}

func TestSelectByCoverage(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 4, 0.5)

	tests := []struct {
		coverage float32
		want     int
	}{
		{1, 0},
		{0.6, 0},
		{0.5, 1}, // must exceed the threshold
		{0.3, 1},
		{0.2, 2},
		{0.1, 3},
		{0.001, 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, levels.IndexByCoverage(tt.coverage), "coverage %v", tt.coverage)
	}
}

func TestSelectMonotonic(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 6, 0.5)

	prev := 0
	for d := float32(0); d < 1000; d += 0.75 {
		idx := levels.IndexByDistance(d)
		require.GreaterOrEqual(t, idx, prev, "distance %v", d)
		prev = idx
	}

	prev = 0
	for c := float32(1); c > 0; c -= 0.003 {
		idx := levels.IndexByCoverage(c)
		require.GreaterOrEqual(t, idx, prev, "coverage %v", c)
		prev = idx
	}
}

func TestBiasScalesQuery(t *testing.T) {
	biased := GenerateMeshLevels(mesh.NewCube(), 5, 0.5)
	plain := GenerateMeshLevels(mesh.NewCube(), 5, 0.5)

	for _, b := range []float32{0.25, 0.5, 1.5, 2, 3.7} {
		biased.SetBias(b)
		require.Equal(t, b, biased.Bias())
		for d := float32(0); d < 300; d += 1.3 {
			require.Equal(t, plain.IndexByDistance(d*b), biased.IndexByDistance(d), "bias %v distance %v", b, d)
		}
		for c := float32(0); c < 1; c += 0.01 {
			require.Equal(t, plain.IndexByCoverage(c/b), biased.IndexByCoverage(c), "bias %v coverage %v", b, c)
		}
	}
}

func TestSetBiasIgnoresInvalid(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 2, 0.5)
	levels.SetBias(2)
	for _, b := range []float32{0, -1, nan32(), inf32()} {
		levels.SetBias(b)
		require.Equal(t, float32(2), levels.Bias())
	}
}

func TestSetDistancesNonMonotonic(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 3, 0.5)
	levels.SetDistances([]float32{50, 5, 100})

	require.Equal(t, 0, levels.IndexByDistance(10))
	require.Equal(t, 2, levels.IndexByDistance(60))
	require.Equal(t, 2, levels.IndexByDistance(500))

	// A shorter slice only overrides a prefix.
	levels.SetDistances([]float32{1})
	require.Equal(t, float32(1), levels.MaxDistance(0))
	require.Equal(t, float32(5), levels.MaxDistance(1))

	levels.SetCoverages([]float32{0.9, 0.1})
	require.Equal(t, 1, levels.IndexByCoverage(0.5))
	require.Equal(t, float32(0.125), levels.ScreenCoverage(2))
}

func TestLevelOutOfRangePanics(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 4, 0.5)

	require.PanicsWithValue(t, "lod: level 4 out of range [0, 4)", func() { levels.Level(4) })
	require.PanicsWithValue(t, "lod: level -1 out of range [0, 4)", func() { levels.Mesh(-1) })
	require.Panics(t, func() { levels.MaxDistance(10) })
}

func TestNewMeshLevels(t *testing.T) {
	src := mesh.NewUVSphere(8, 8)
	half := qem.Simplify(src, 0.5)
	levels := NewMeshLevels([]*mesh.Mesh{src, half})

	require.Equal(t, 2, levels.Len())
	require.Equal(t, float32(1), levels.Level(0).Ratio)
	require.InDelta(t, float64(half.VertexCount())/float64(src.VertexCount()), levels.Level(1).Ratio, 1e-6)
	require.Equal(t, half.TriangleCount(), levels.Level(1).TriangleCount)

	require.Panics(t, func() { NewMeshLevels(nil) })
}

func TestSelectDoesNotAllocate(t *testing.T) {
	levels := GenerateMeshLevels(mesh.NewCube(), 4, 0.5)
	allocs := testing.AllocsPerRun(100, func() {
		_ = levels.SelectByDistance(33)
		_ = levels.SelectByCoverage(0.2)
	})
	require.Zero(t, allocs)
}
