// Package bake prepares mesh level sets for a batch of named meshes.
package bake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshlod/pkg/lod"
	"github.com/Faultbox/meshlod/pkg/mesh"
	"github.com/Faultbox/meshlod/pkg/qem"
)

// ErrUnknownMesh is returned for names that were never added.
var ErrUnknownMesh = errors.New("unknown mesh")

// Options controls how level sets are generated.
type Options struct {
	Workers         int
	LevelCount      int
	ReductionFactor float32
	Thresholds      lod.Thresholds
	Simplify        []qem.Option
	Logger          *zap.Logger
}

// Baker builds level sets from registered source meshes.
type Baker struct {
	opts    Options
	sources map[string]*mesh.Mesh
	cache   *Cache
	mu      sync.RWMutex
}

// NewBaker creates a new baker. Workers below one run jobs one at a time.
func NewBaker(opts Options) *Baker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Baker{
		opts:    opts,
		sources: make(map[string]*mesh.Mesh),
		cache:   NewCache(),
	}
}

// Add registers a source mesh. Adding a name again replaces the source and
// drops any level set baked from the old one.
func (b *Baker) Add(name string, m *mesh.Mesh) {
	b.mu.Lock()
	b.sources[name] = m
	b.mu.Unlock()

	b.cache.Delete(name)
}

// Names returns the registered mesh names in sorted order.
func (b *Baker) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.sources))
	for name := range b.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bake builds the level sets of the named meshes, or of every registered mesh
// when no names are given. Meshes already in the cache are skipped. Jobs not
// yet started when ctx is cancelled are not run.
func (b *Baker) Bake(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = b.Names()
	}

	jobs := make([]job, 0, len(names))
	for _, name := range names {
		src, err := b.source(name)
		if err != nil {
			return err
		}
		if _, ok := b.cache.Get(name); ok {
			continue
		}
		jobs = append(jobs, job{name: name, src: src})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for _, j := range jobs {
		j := j
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.cache.Set(j.name, b.build(j))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("baking levels: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("baking levels: %w", err)
	}
	return nil
}

// Levels returns the level set of a mesh, baking it first if needed.
func (b *Baker) Levels(name string) (*lod.MeshLevels, error) {
	// Check cache first
	if levels, ok := b.cache.Get(name); ok {
		return levels, nil
	}

	src, err := b.source(name)
	if err != nil {
		return nil, err
	}

	levels := b.build(job{name: name, src: src})
	b.cache.Set(name, levels)
	return levels, nil
}

// Cache returns the cache backing the baker.
func (b *Baker) Cache() *Cache {
	return b.cache
}

type job struct {
	name string
	src  *mesh.Mesh
}

func (b *Baker) source(name string) (*mesh.Mesh, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	src, ok := b.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMesh, name)
	}
	return src, nil
}

func (b *Baker) build(j job) *lod.MeshLevels {
	start := time.Now()

	opts := []lod.GenerateOption{lod.WithSimplifyOptions(b.opts.Simplify...)}
	if b.opts.Thresholds != (lod.Thresholds{}) {
		opts = append(opts, lod.WithThresholds(b.opts.Thresholds))
	}
	levels := lod.GenerateMeshLevels(j.src, b.opts.LevelCount, b.opts.ReductionFactor, opts...)

	b.opts.Logger.Info("baked levels",
		zap.String("mesh", j.name),
		zap.Int("levels", levels.Len()),
		zap.Int("triangles", j.src.TriangleCount()),
		zap.Int("coarsest_triangles", levels.Level(levels.Len()-1).TriangleCount),
		zap.Duration("took", time.Since(start)),
	)
	return levels
}
