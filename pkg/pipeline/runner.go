package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/takumik/keizu/pkg/cache"
	"github.com/takumik/keizu/pkg/errors"
	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/ledger"
	"github.com/takumik/keizu/pkg/observability"
	"github.com/takumik/keizu/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
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

// Execute runs the complete parse → build → render pipeline with caching.
// data holds the raw xlsx workbook bytes.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Parse the workbook and build the genealogy
	parseStart := time.Now()
	tree, led, treeHit, err := r.BuildWithCacheInfo(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	result.Ledger = led
	result.Tree = tree
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = tree.NodeCount()
	result.Stats.EdgeCount = tree.EdgeCount()
	if led != nil {
		result.Stats.RecordCount = len(led.Records)
	}
	result.CacheInfo.TreeHit = treeHit

	if treeData, err := marshalTree(tree); err == nil {
		result.TreeHash = cache.Hash(treeData)
	}

	r.Logger.Info("built genealogy",
		"nodes", tree.NodeCount(),
		"edges", tree.EdgeCount(),
		"duration", result.Stats.ParseTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tree, result.TreeHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo parses the workbook and builds the genealogy with
// caching, returning cache hit info. The ledger is nil on a cache hit
// since only the tree is stored.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, data []byte, opts Options) (*genealogy.Tree, *ledger.Ledger, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.TreeKey(cache.Hash(data), opts.Sheet)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			tree, err := genealogy.ReadJSON(bytes.NewReader(cached))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "tree")
				return tree, nil, true, nil
			}
			// Corrupt entry, fall through to rebuild
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, opts.Sheet)
	led, err := ledger.ReadBytes(data, opts.Sheet)
	observability.Pipeline().OnParseComplete(ctx, opts.Sheet, recordCount(led), time.Since(parseStart), err)
	if err != nil {
		return nil, nil, false, err
	}

	buildStart := time.Now()
	tree := genealogy.Build(led)
	if err := tree.Validate(); err != nil {
		return nil, nil, false, err
	}
	observability.Pipeline().OnBuildComplete(ctx, tree.NodeCount(), tree.EdgeCount(), time.Since(buildStart))

	if treeData, err := marshalTree(tree); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, treeData, cache.TTLTree)
		observability.Cache().OnCacheSet(ctx, "tree", len(treeData))
	}

	return tree, led, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, data []byte, opts Options) (*genealogy.Tree, error) {
	tree, _, _, err := r.BuildWithCacheInfo(ctx, data, opts)
	return tree, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *genealogy.Tree, treeHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if treeHash == "" {
		treeData, err := marshalTree(tree)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize tree for cache key")
		}
		treeHash = cache.Hash(treeData)
	}

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := r.renderAll(ctx, tree, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *genealogy.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, "", opts)
	return artifacts, err
}

// renderAll renders every requested format. DOT is generated once and
// shared by the Graphviz-backed formats.
func (r *Runner) renderAll(ctx context.Context, tree *genealogy.Tree, opts Options) (map[string][]byte, error) {
	style := opts.Style()
	dot := render.ToDOT(tree, style)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = render.RenderPNG(ctx, dot)
		case FormatPDF:
			data, err = render.RenderPDF(ctx, dot)
		case FormatHTML:
			data, err = render.ToHTML(tree, style)
		case FormatJSON:
			data, err = marshalTree(tree)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
		if err != nil {
			return nil, err
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

func marshalTree(t *genealogy.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := genealogy.WriteJSON(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recordCount(l *ledger.Ledger) int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}
