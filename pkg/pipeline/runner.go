package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/observability"
)

// Runner executes the pipeline with artifact caching.
//
// A Runner holds no per-run state; one runner may serve concurrent runs
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer becomes [cache.DefaultKeyer], a
// nil cache disables caching and a nil logger uses the default logger.
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

// Execute runs fetch → layout → render.
func (r *Runner) Execute(ctx context.Context, src Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	matches, err := Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result := &Result{
		Matches:  matches,
		Topology: bracket.Classify(matches),
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.MatchCount = len(matches)
	opts.Logger.Info("fetched bracket",
		"source", sourceName(src),
		"matches", len(matches),
		"topology", result.Topology,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	if !opts.IsNodelink() {
		var titles map[string]string
		if ps, ok := src.(ProblemSource); ok && opts.Titles {
			titles = FetchTitles(ctx, ps, matches, opts.Refresh, opts.Logger)
		}
		layoutStart := time.Now()
		l, err := r.ComputeLayout(ctx, matches, titles, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = l
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.Stats.BoxCount = len(l.Boxes) + len(l.Extras)
		result.Stats.Skipped = len(l.Skipped)
		opts.Logger.Info("computed layout",
			"boxes", result.Stats.BoxCount,
			"skipped", result.Stats.Skipped,
			"duration", result.Stats.LayoutTime)
		for _, s := range l.Skipped {
			opts.Logger.Warn("match left out of layout", "match", s.MatchNum, "reason", s.Reason)
		}
	}

	// Stage 3: Render
	renderStart := time.Now()
	hash, err := cache.HashJSON(matches)
	if err != nil {
		return nil, fmt.Errorf("hash bracket: %w", err)
	}
	result.BracketHash = hash
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Layout, matches, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayout lays out matches, reporting the pass to the pipeline hooks.
func (r *Runner) ComputeLayout(ctx context.Context, matches []bracket.Match, titles map[string]string, opts Options) (layout.Layout, error) {
	topo := bracket.Classify(matches).String()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, topo, len(matches))
	start := time.Now()

	l, err := layout.Build(matches, opts.LayoutOptions(titles)...)
	hooks.OnLayoutComplete(ctx, topo, len(l.Skipped), time.Since(start), err)
	return l, err
}

// RenderWithCacheInfo renders every requested format, serving them from
// the cache when all are present, and reports whether they were.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, matches []bracket.Match, bracketHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, l, matches, bracketHash, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, l layout.Layout, matches []bracket.Match, bracketHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, matches, bracketHash, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, l layout.Layout, matches []bracket.Match, bracketHash string, opts Options) (map[string][]byte, bool, error) {
	useCache := bracketHash != "" && !opts.Refresh
	hooks := observability.Cache()

	if useCache {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(bracketHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "artifact")
				break
			}
			hooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderFromLayout(l, matches, opts)
	if err != nil {
		return nil, false, err
	}

	if bracketHash != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(bracketHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				opts.Logger.Debug("artifact not cached", "format", format, "error", err)
				continue
			}
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (the cache).
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
