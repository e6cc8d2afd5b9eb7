package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/shadergraph/pkg/cache"
	"github.com/matzehuels/shadergraph/pkg/codegen"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/observability"
	"github.com/matzehuels/shadergraph/pkg/registry"
)

// Runner executes pipeline stages with caching.
// It is safe for concurrent use if the underlying cache is.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a Runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedBuild is the cache payload of a build.
type cachedBuild struct {
	Source string   `json:"source"`
	Order  []string `json:"order"`
}

// Execute loads the registry and graph named by opts and builds the shader.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	reg, err := LoadRegistry(opts)
	if err != nil {
		return nil, err
	}
	s, err := Load(ctx, opts.Graph, reg)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded graph",
		"graph", opts.Graph,
		"nodes", s.Len(),
		"types", len(reg.Names()),
		"duration", loadTime)

	result, err := r.BuildStructure(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = opts.Graph
	result.Stats.LoadTime = loadTime
	return result, nil
}

// BuildStructure builds the shader for an already assembled structure. The
// result is looked up in and written to the cache unless opts.Refresh skips
// the lookup.
func (r *Runner) BuildStructure(ctx context.Context, s *graph.Structure, opts Options) (*Result, error) {
	graphHash, err := StructureHash(s)
	if err != nil {
		return nil, err
	}
	regHash := registry.Hash(s.Registry())

	result := &Result{
		GraphHash:    graphHash,
		RegistryHash: regHash,
		Stats: Stats{
			NodeCount: s.Len(),
			EdgeCount: countEdges(s),
		},
	}

	key := r.Keyer.ShaderKey(graphHash, regHash)
	if !opts.Refresh {
		if cached, ok := r.lookupBuild(ctx, key); ok {
			result.Source = cached.Source
			result.Order = cached.Order
			result.CacheInfo.BuildHit = true
			r.Logger.Debug("build cache hit", "graph", graphHash[:12])
			return result, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, s.Len())
	start := time.Now()

	ordered := codegen.Sort(codegen.NewGraph(s.Nodes()))
	source, err := codegen.GenerateCode(s.Registry(), ordered)

	result.Stats.BuildTime = time.Since(start)
	hooks.OnBuildComplete(ctx, len(source), result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	result.Source = source
	result.Order = make([]string, len(ordered))
	for i, n := range ordered {
		result.Order[i] = n.ID()
	}

	r.Logger.Info("generated shader",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"bytes", len(source),
		"duration", result.Stats.BuildTime)

	r.storeBuild(ctx, key, cachedBuild{Source: result.Source, Order: result.Order})
	return result, nil
}

// Render exports diagrams of s, serving each format from the cache when
// possible. The returned bool reports whether every format was a cache hit.
func (r *Runner) Render(ctx context.Context, s *graph.Structure, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	graphHash, err := StructureHash(s)
	if err != nil {
		return nil, false, err
	}
	regHash := registry.Hash(s.Registry())

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.RenderKey(graphHash, regHash, format, opts.Detailed))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "render")
				break
			}
			observability.Cache().OnCacheHit(ctx, "render")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := Render(s, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range artifacts {
		key := r.Keyer.RenderKey(graphHash, regHash, format, opts.Detailed)
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return artifacts, false, nil
}

// ExecuteAll runs Execute for every entry of optsList with at most limit
// builds in flight. Results are returned in input order. The first failure
// cancels the remaining builds.
func (r *Runner) ExecuteAll(ctx context.Context, optsList []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]*Result, len(optsList))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, opts := range optsList {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", opts.Graph, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// StructureHash returns the content hash of s: the SHA-256 of its record form.
func StructureHash(s *graph.Structure) (string, error) {
	data, err := graph.MarshalStructure(s)
	if err != nil {
		return "", fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return cache.Hash(data), nil
}

func (r *Runner) lookupBuild(ctx context.Context, key string) (cachedBuild, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "shader")
		return cachedBuild{}, false
	}
	var cached cachedBuild
	if err := json.Unmarshal(data, &cached); err != nil {
		observability.Cache().OnCacheMiss(ctx, "shader")
		return cachedBuild{}, false
	}
	observability.Cache().OnCacheHit(ctx, "shader")
	return cached, true
}

func (r *Runner) storeBuild(ctx context.Context, key string, b cachedBuild) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLShader); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "shader", len(data))
}
