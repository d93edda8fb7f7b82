package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshlod/internal/config"
)

func TestParseMesh(t *testing.T) {
	tests := []struct {
		name      string
		vertices  int
		triangles int
		wantErr   bool
	}{
		{"cube", 8, 12, false},
		{"CUBE", 8, 12, false},
		{"grid", 81, 128, false},
		{"grid:2", 9, 8, false},
		{"sphere", 16*24 - 24 + 2, 2 * 24 * 15, false},
		{"sphere:4,6", 20, 36, false},
		{"grid:0", 0, 0, true},
		{"grid:x", 0, 0, true},
		{"sphere:4", 0, 0, true},
		{"sphere:4,9999", 0, 0, true},
		{"teapot", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parseMesh(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.vertices, m.VertexCount())
			require.Equal(t, tt.triangles, m.TriangleCount())
		})
	}
}

func TestRunSelect(t *testing.T) {
	cfg := config.Default()

	var out bytes.Buffer
	require.NoError(t, run(cfg, "select", []string{"-json", "cube", "5", "25"}, &out))

	var picks []selection
	require.NoError(t, json.Unmarshal(out.Bytes(), &picks))
	require.Len(t, picks, 2)
	require.Equal(t, 0, picks[0].MeshIndex)
	require.Equal(t, 2048, picks[0].Resolution)
	require.Equal(t, 2, picks[1].MeshIndex)
	require.Equal(t, 512, picks[1].Resolution)
	require.Equal(t, 4, picks[1].LightCount)
}

func TestRunSelectBias(t *testing.T) {
	biased := config.Default()
	biased.LOD.Bias = 2

	var a, b bytes.Buffer
	require.NoError(t, run(biased, "select", []string{"-json", "sphere:8,12", "12"}, &a))
	require.NoError(t, run(config.Default(), "select", []string{"-json", "sphere:8,12", "24"}, &b))

	var pa, pb []selection
	require.NoError(t, json.Unmarshal(a.Bytes(), &pa))
	require.NoError(t, json.Unmarshal(b.Bytes(), &pb))
	require.Equal(t, 2, pa[0].MeshIndex)
	require.Equal(t, pb[0].MeshIndex, pa[0].MeshIndex)
	require.Equal(t, pb[0].Triangles, pa[0].Triangles)
}

func TestRunSelectCoverage(t *testing.T) {
	cfg := config.Default()
	cfg.LOD.Mode = "coverage"

	var out bytes.Buffer
	require.NoError(t, run(cfg, "select", []string{"-json", "cube", "0.6", "0.2", "0.01"}, &out))

	var picks []selection
	require.NoError(t, json.Unmarshal(out.Bytes(), &picks))
	require.Equal(t, 0, picks[0].MeshIndex)
	require.Equal(t, 2, picks[1].MeshIndex)
	require.Equal(t, 3, picks[2].MeshIndex)
}

func TestRunSelectBadValue(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run(config.Default(), "select", []string{"cube", "near"}, &out))
	require.Error(t, run(config.Default(), "select", []string{"cube"}, &out))
}

func TestRunLevels(t *testing.T) {
	cfg := config.Default()
	cfg.Bake.Workers = 2

	var out bytes.Buffer
	require.NoError(t, run(cfg, "levels", []string{"-json", "cube", "sphere:8,12"}, &out))

	var tables []levelTable
	require.NoError(t, json.Unmarshal(out.Bytes(), &tables))
	require.Len(t, tables, 2)

	for _, tbl := range tables {
		require.Len(t, tbl.Levels, cfg.LOD.LevelCount)
		for i, row := range tbl.Levels {
			require.Equal(t, i, row.Level)
			want := 10 * float32(int(1)<<i)
			require.Equal(t, want, row.MaxDistance)
			if i > 0 {
				require.LessOrEqual(t, row.Triangles, tbl.Levels[i-1].Triangles)
			}
		}
	}
	require.Equal(t, 12, tables[0].Levels[0].Triangles)
	require.True(t, tables[0].Levels[0].Reflections)
	require.False(t, tables[0].Levels[1].Reflections)
}

func TestRunLevelsText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(config.Default(), "levels", []string{"grid:4"}, &out))
	require.Contains(t, out.String(), "Mesh: grid:4")
	require.Contains(t, out.String(), "triangles")
}

func TestRunLevelsUnknownMesh(t *testing.T) {
	var out bytes.Buffer
	err := run(config.Default(), "levels", []string{"teapot"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "teapot")
}

func TestRunSimplify(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(config.Default(), "simplify", []string{"-json", "-ratio", "0.25", "sphere:16,24"}, &out))

	var report simplifyReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Equal(t, "optimal", report.Placement)
	require.Equal(t, 362, report.SourceVertices)
	require.Equal(t, 91, report.TargetVertices)
	require.LessOrEqual(t, report.ResultVertices, 91)
	require.Equal(t, 362-91, report.Collapses)
	require.LessOrEqual(t, report.ResultTriangles, report.SourceTriangles)
}

func TestRunSimplifyMidpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Simplify.Placement = "midpoint"

	var out bytes.Buffer
	require.NoError(t, run(cfg, "simplify", []string{"cube"}, &out))
	require.Contains(t, out.String(), "midpoint")
}

func TestRunConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LOD.LevelCount = 6

	var out bytes.Buffer
	require.NoError(t, run(cfg, "config", nil, &out))

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, 6, decoded.LOD.LevelCount)
	require.Equal(t, "optimal", decoded.Simplify.Placement)

	path := filepath.Join(t.TempDir(), "lodtool.yaml")
	require.NoError(t, run(cfg, "config", []string{"-save", path}, &out))
	require.FileExists(t, path)
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(config.Default(), "explode", nil, &out)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "explode"))
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(config.Default(), "help", nil, &out))
	require.Contains(t, out.String(), "Commands:")
}

func TestRunSweep(t *testing.T) {
	for _, mode := range []string{"distance", "coverage"} {
		t.Run(mode, func(t *testing.T) {
			cfg := config.Default()
			cfg.LOD.Mode = mode

			var out bytes.Buffer
			require.NoError(t, run(cfg, "sweep", []string{"-json", "-steps", "60", "-zoom", "0.1", "sphere:8,12"}, &out))

			var steps []sweepStep
			require.NoError(t, json.Unmarshal(out.Bytes(), &steps))
			require.NotEmpty(t, steps)
			require.Equal(t, 0, steps[0].Step)

			last := steps[len(steps)-1]
			require.Equal(t, cfg.LOD.LevelCount-1, last.MeshIndex, "zooming far out reaches the coarsest level")
			for i := 1; i < len(steps); i++ {
				require.Greater(t, steps[i].Distance, steps[i-1].Distance)
				require.GreaterOrEqual(t, steps[i].MeshIndex, steps[i-1].MeshIndex)
			}
		})
	}
}

func TestRunSweepRejectsBadArgs(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run(config.Default(), "sweep", []string{"-zoom", "2", "cube"}, &out))
	require.Error(t, run(config.Default(), "sweep", nil, &out))
}

func TestRunConfigInstall(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	var out bytes.Buffer
	require.NoError(t, run(config.Default(), "config", []string{"-install"}, &out))
	require.FileExists(t, filepath.Join(config.ConfigDir(), "lodtool.yaml"))
}
