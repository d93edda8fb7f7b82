package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlod/internal/bake"
	"github.com/Faultbox/meshlod/internal/camera"
	"github.com/Faultbox/meshlod/internal/config"
	"github.com/Faultbox/meshlod/internal/logger"
	"github.com/Faultbox/meshlod/internal/metrics"
	"github.com/Faultbox/meshlod/pkg/lod"
	"github.com/Faultbox/meshlod/pkg/qem"
)

type simplifyReport struct {
	Mesh             string  `json:"mesh"`
	Placement        string  `json:"placement"`
	Ratio            float32 `json:"ratio"`
	SourceVertices   int     `json:"source_vertices"`
	SourceTriangles  int     `json:"source_triangles"`
	TargetVertices   int     `json:"target_vertices"`
	ResultVertices   int     `json:"result_vertices"`
	ResultTriangles  int     `json:"result_triangles"`
	Collapses        int     `json:"collapses"`
	StalePops        int     `json:"stale_pops"`
	SupersededPops   int     `json:"superseded_pops"`
	RejectedPops     int     `json:"rejected_pops"`
	DroppedTriangles int     `json:"dropped_triangles"`
	DurationMS       float64 `json:"duration_ms"`
}

type levelRow struct {
	Level          int     `json:"level"`
	Ratio          float32 `json:"ratio"`
	Vertices       int     `json:"vertices"`
	Triangles      int     `json:"triangles"`
	MaxDistance    float32 `json:"max_distance"`
	ScreenCoverage float32 `json:"screen_coverage"`
	Resolution     int     `json:"texture_resolution"`
	NormalMapping  bool    `json:"normal_mapping"`
	ShadowReceive  bool    `json:"shadow_receive"`
	Reflections    bool    `json:"reflections"`
	LightCount     int     `json:"light_count"`
}

type levelTable struct {
	Mesh   string     `json:"mesh"`
	Levels []levelRow `json:"levels"`
}

type selection struct {
	Value        float32 `json:"value"`
	MeshIndex    int     `json:"mesh_index"`
	Triangles    int     `json:"triangles"`
	TextureIndex int     `json:"texture_index"`
	Resolution   int     `json:"texture_resolution"`
	ShaderIndex  int     `json:"shader_index"`
	LightCount   int     `json:"light_count"`
}

func cmdSimplify(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("simplify", flag.ContinueOnError)
	ratio := fs.Float64("ratio", float64(cfg.LOD.ReductionFactor), "Target vertex ratio")
	asJSON := fs.Bool("json", false, "Print JSON")
	showMetrics := fs.Bool("metrics", false, "Print prometheus metrics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lodtool simplify <mesh> [-ratio r]")
	}

	src, err := parseMesh(fs.Arg(0))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := append(simplifyOptions(cfg), qem.WithObserver(metrics.NewSimplify(reg)))
	_, st := qem.SimplifyWithStats(src, float32(*ratio), opts...)

	report := simplifyReport{
		Mesh:             fs.Arg(0),
		Placement:        st.Placement.String(),
		Ratio:            float32(*ratio),
		SourceVertices:   st.SourceVertices,
		SourceTriangles:  st.SourceTriangles,
		TargetVertices:   st.TargetVertices,
		ResultVertices:   st.ResultVertices,
		ResultTriangles:  st.ResultTriangles,
		Collapses:        st.Collapses,
		StalePops:        st.StalePops,
		SupersededPops:   st.SupersededPops,
		RejectedPops:     st.RejectedPops,
		DroppedTriangles: st.DroppedTriangles,
		DurationMS:       float64(st.Duration) / float64(time.Millisecond),
	}

	if *asJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Mesh:       %s (%s, ratio %.3f)\n", report.Mesh, report.Placement, report.Ratio)
		fmt.Fprintf(out, "Vertices:   %d -> %d (target %d)\n", report.SourceVertices, report.ResultVertices, report.TargetVertices)
		fmt.Fprintf(out, "Triangles:  %d -> %d (%d dropped)\n", report.SourceTriangles, report.ResultTriangles, report.DroppedTriangles)
		fmt.Fprintf(out, "Collapses:  %d\n", report.Collapses)
		fmt.Fprintf(out, "Pops:       %d stale, %d superseded, %d rejected\n", report.StalePops, report.SupersededPops, report.RejectedPops)
		fmt.Fprintf(out, "Took:       %.3f ms\n", report.DurationMS)
	}

	if *showMetrics {
		return dumpMetrics(reg, os.Stderr)
	}
	return nil
}

func cmdLevels(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("levels", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	showMetrics := fs.Bool("metrics", false, "Print prometheus metrics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names := fs.Args()
	if len(names) == 0 {
		names = []string{"cube", "grid", "sphere"}
	}

	reg := prometheus.NewRegistry()
	baker, err := newBaker(cfg, names, metrics.NewSimplify(reg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := baker.Bake(ctx, names...); err != nil {
		return err
	}

	textures, shaders := companionLevels(cfg)
	tables := make([]levelTable, 0, len(names))
	for _, name := range names {
		levels, err := baker.Levels(name)
		if err != nil {
			return err
		}
		tables = append(tables, buildTable(name, levels, textures, shaders))
	}

	if *asJSON {
		if err := writeJSON(out, tables); err != nil {
			return err
		}
	} else {
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printTable(out, t)
		}
	}

	if *showMetrics {
		return dumpMetrics(reg, os.Stderr)
	}
	return nil
}

func cmdSelect(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: lodtool select <mesh> <value...>")
	}

	values := make([]float32, 0, fs.NArg()-1)
	for _, arg := range fs.Args()[1:] {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("parsing value %q: %w", arg, err)
		}
		values = append(values, float32(v))
	}

	name := fs.Arg(0)
	baker, err := newBaker(cfg, []string{name}, nil)
	if err != nil {
		return err
	}
	meshes, err := baker.Levels(name)
	if err != nil {
		return err
	}

	textures, shaders := companionLevels(cfg)
	ctrl := lod.NewController(meshes, textures, shaders, lod.ParseMode(cfg.LOD.Mode))
	ctrl.SetBias(cfg.LOD.Bias)

	picks := make([]selection, 0, len(values))
	for _, v := range values {
		ctrl.Update(v)
		picks = append(picks, selection{
			Value:        v,
			MeshIndex:    ctrl.MeshIndex(),
			Triangles:    ctrl.Mesh().TriangleCount(),
			TextureIndex: ctrl.TextureIndex(),
			Resolution:   ctrl.Resolution(),
			ShaderIndex:  ctrl.ShaderIndex(),
			LightCount:   ctrl.Complexity().LightCount,
		})
	}

	if *asJSON {
		return writeJSON(out, picks)
	}

	fmt.Fprintf(out, "Mesh: %s  mode: %s  bias: %g\n", name, ctrl.Mode(), ctrl.Bias())
	fmt.Fprintf(out, "%10s %5s %9s %8s %10s %7s %6s\n", "value", "mesh", "triangles", "texture", "resolution", "shader", "lights")
	for _, p := range picks {
		fmt.Fprintf(out, "%10g %5d %9d %8d %10d %7d %6d\n",
			p.Value, p.MeshIndex, p.Triangles, p.TextureIndex, p.Resolution, p.ShaderIndex, p.LightCount)
	}
	return nil
}

type sweepStep struct {
	Step         int     `json:"step"`
	Distance     float32 `json:"distance"`
	Coverage     float32 `json:"coverage"`
	MeshIndex    int     `json:"mesh_index"`
	TextureIndex int     `json:"texture_index"`
	ShaderIndex  int     `json:"shader_index"`
}

// cmdSweep zooms an orbit camera out from the mesh and reports every step
// where a selected level changes.
func cmdSweep(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	steps := fs.Int("steps", 40, "Number of zoom steps")
	zoom := fs.Float64("zoom", 0.1, "Fractional distance change per step")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lodtool sweep <mesh> [-steps n] [-zoom z]")
	}
	if *steps < 1 || !(*zoom > 0 && *zoom < 1) {
		return fmt.Errorf("sweep needs steps >= 1 and zoom in (0, 1)")
	}

	name := fs.Arg(0)
	baker, err := newBaker(cfg, []string{name}, nil)
	if err != nil {
		return err
	}
	meshes, err := baker.Levels(name)
	if err != nil {
		return err
	}

	textures, shaders := companionLevels(cfg)
	ctrl := lod.NewController(meshes, textures, shaders, lod.ParseMode(cfg.LOD.Mode))
	ctrl.SetBias(cfg.LOD.Bias)

	bounds := meshes.Mesh(0).Bounds()
	cam := camera.NewOrbitCamera()
	cam.ZoomSensitivity = float32(*zoom)
	cam.FitToBounds(bounds)

	var changes []sweepStep
	for i := 0; i <= *steps; i++ {
		if i > 0 {
			cam.HandleZoom(-1)
		}
		cam.Track(ctrl, bounds)
		d, c := cam.View(bounds)
		step := sweepStep{
			Step:         i,
			Distance:     d,
			Coverage:     c,
			MeshIndex:    ctrl.MeshIndex(),
			TextureIndex: ctrl.TextureIndex(),
			ShaderIndex:  ctrl.ShaderIndex(),
		}
		if n := len(changes); n > 0 {
			last := changes[n-1]
			if last.MeshIndex == step.MeshIndex && last.TextureIndex == step.TextureIndex && last.ShaderIndex == step.ShaderIndex {
				continue
			}
		}
		changes = append(changes, step)
	}

	if *asJSON {
		return writeJSON(out, changes)
	}

	fmt.Fprintf(out, "Mesh: %s  mode: %s  bias: %g\n", name, ctrl.Mode(), ctrl.Bias())
	fmt.Fprintf(out, "%5s %9s %9s %5s %8s %7s\n", "step", "distance", "coverage", "mesh", "texture", "shader")
	for _, s := range changes {
		fmt.Fprintf(out, "%5d %9.2f %9.4f %5d %8d %7d\n",
			s.Step, s.Distance, s.Coverage, s.MeshIndex, s.TextureIndex, s.ShaderIndex)
	}
	return nil
}

func cmdConfig(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	save := fs.String("save", "", "Write the effective config to this path")
	install := fs.Bool("install", false, "Write the effective config to the user config directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *install {
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info("installed config", zap.String("dir", config.ConfigDir()))
		return nil
	}

	if *save != "" {
		if err := cfg.SaveTo(*save); err != nil {
			return err
		}
		logger.Info("saved config", zap.String("path", *save))
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func simplifyOptions(cfg *config.Config) []qem.Option {
	opts := []qem.Option{
		qem.WithPlacement(qem.ParsePlacement(cfg.Simplify.Placement)),
		qem.WithLogger(logger.Named("qem")),
	}
	if cfg.Simplify.WeldEpsilon > 0 {
		opts = append(opts, qem.WithWeld(cfg.Simplify.WeldEpsilon))
	}
	return opts
}

func newBaker(cfg *config.Config, names []string, obs qem.Observer) (*bake.Baker, error) {
	opts := simplifyOptions(cfg)
	if obs != nil {
		opts = append(opts, qem.WithObserver(obs))
	}

	baker := bake.NewBaker(bake.Options{
		Workers:         cfg.Bake.Workers,
		LevelCount:      cfg.LOD.LevelCount,
		ReductionFactor: cfg.LOD.ReductionFactor,
		Thresholds:      cfg.Thresholds(),
		Simplify:        opts,
		Logger:          logger.Named("bake"),
	})
	for _, name := range names {
		m, err := parseMesh(name)
		if err != nil {
			return nil, err
		}
		baker.Add(name, m)
	}
	return baker, nil
}

func companionLevels(cfg *config.Config) (*lod.TextureLevels, *lod.ShaderLevels) {
	textures := lod.NewTextureLevels(cfg.Texture.BaseResolution, cfg.LOD.LevelCount)
	textures.ApplyThresholds(cfg.Thresholds())

	shaders := lod.NewShaderLevels(cfg.LOD.LevelCount, cfg.Shader)
	shaders.ApplyThresholds(cfg.Thresholds())
	return textures, shaders
}

func buildTable(name string, meshes *lod.MeshLevels, textures *lod.TextureLevels, shaders *lod.ShaderLevels) levelTable {
	t := levelTable{Mesh: name, Levels: make([]levelRow, 0, meshes.Len())}
	for i := 0; i < meshes.Len(); i++ {
		lvl := meshes.Level(i)
		row := levelRow{
			Level:          i,
			Ratio:          lvl.Ratio,
			Vertices:       lvl.Mesh.VertexCount(),
			Triangles:      lvl.TriangleCount,
			MaxDistance:    lvl.MaxDistance,
			ScreenCoverage: lvl.ScreenCoverage,
		}
		if i < textures.Len() {
			row.Resolution = textures.Resolution(i)
		}
		if i < shaders.Len() {
			c := shaders.Complexity(i)
			row.NormalMapping = c.NormalMapping
			row.ShadowReceive = c.ShadowReceive
			row.Reflections = c.Reflections
			row.LightCount = c.LightCount
		}
		t.Levels = append(t.Levels, row)
	}
	return t
}

func printTable(out io.Writer, t levelTable) {
	fmt.Fprintf(out, "Mesh: %s\n", t.Mesh)
	fmt.Fprintf(out, "  %5s %6s %8s %9s %9s %8s %7s %s\n",
		"level", "ratio", "vertices", "triangles", "distance", "coverage", "texture", "shader")
	for _, r := range t.Levels {
		fmt.Fprintf(out, "  %5d %6.3f %8d %9d %9.1f %8.4f %7d %s\n",
			r.Level, r.Ratio, r.Vertices, r.Triangles, r.MaxDistance, r.ScreenCoverage, r.Resolution, shaderSummary(r))
	}
}

func shaderSummary(r levelRow) string {
	s := fmt.Sprintf("%d lights", r.LightCount)
	if r.NormalMapping {
		s += " +normal"
	}
	if r.ShadowReceive {
		s += " +shadow"
	}
	if r.Reflections {
		s += " +reflect"
	}
	return s
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func dumpMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
