package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/speckview/pkg/cache"
	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/observability"
	"github.com/matzehuels/speckview/pkg/render"
	"github.com/matzehuels/speckview/pkg/speck"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	snap, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Snapshot = snap
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ModuleCount = snap.ModuleCount()
	result.Stats.FunctionCount = snap.FunctionCount()
	result.Stats.EdgeCount = len(snap.FunctionEdges)
	result.CacheInfo.ParseHit = parseHit

	// Compute snapshot hash for cache keys and viewer responses
	if data, err := graph.MarshalSnapshot(snap); err == nil {
		result.SnapshotHash = cache.Hash(data)
	}

	r.Logger.Info("parsed modules",
		"modules", snap.ModuleCount(),
		"functions", snap.FunctionCount(),
		"edges", len(snap.FunctionEdges),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	geo, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Geometry = geo
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"boxes", len(geo.Modules)+len(geo.Functions),
		"width", geo.Width,
		"height", geo.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, geo, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo parses the source tree with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*graph.Snapshot, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// The cache key carries the latest source mtime, so a stale entry can
	// only be served while the tree is unchanged.
	version, err := speck.Version(opts.RootFile)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.SnapshotKey(opts.RootFile, speck.VersionToken(version))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := graph.UnmarshalSnapshot(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return snap, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	observability.Pipeline().OnParseStart(ctx, opts.RootFile)
	start := time.Now()
	snap, err := speck.Parse(opts.RootFile)
	observability.Pipeline().OnParseComplete(ctx, opts.RootFile, countModules(snap), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := graph.MarshalSnapshot(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}

	return snap, false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*graph.Snapshot, error) {
	snap, _, err := r.ParseWithCacheInfo(ctx, opts)
	return snap, err
}

// ComputeLayoutWithCacheInfo computes geometry with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, snap *graph.Snapshot, opts Options) (*layout.Geometry, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	snapData, _ := graph.MarshalSnapshot(snap)
	snapHash := cache.Hash(snapData)
	cacheKey := r.Keyer.LayoutKey(snapHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := layout.UnmarshalGeometry(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, snap.ModuleCount())
	start := time.Now()
	geo, err := layout.Compute(snap, opts.Config, opts.Measurer)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := layout.MarshalGeometry(geo); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return geo, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, snap *graph.Snapshot, opts Options) (*layout.Geometry, error) {
	geo, _, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	return geo, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *graph.Snapshot, geo *layout.Geometry, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from geometry data
	geoData, err := layout.MarshalGeometry(geo)
	if err != nil {
		return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
	}
	layoutHash := cache.Hash(geoData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := r.renderFormats(ctx, snap, geo, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snap *graph.Snapshot, geo *layout.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, geo, opts)
	return artifacts, err
}

// renderFormats produces every requested format from the same snapshot,
// geometry, and expansion state.
func (r *Runner) renderFormats(ctx context.Context, snap *graph.Snapshot, geo *layout.Geometry, opts Options) (map[string][]byte, error) {
	set := opts.ExpandedSet(snap)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatSVG:
			data = render.RenderSVG(snap, geo, set, opts.Config)
		case FormatJSON:
			data, err = render.RenderJSON(render.BuildDocument(snap, geo, set, opts.Config, 0))
		case FormatDOT:
			data = []byte(render.ToDOT(snap))
		default:
			err = ValidateFormat(format)
		}

		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countModules(snap *graph.Snapshot) int {
	if snap == nil {
		return 0
	}
	return snap.ModuleCount()
}
