package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takumik/keizu/internal/config"
	"github.com/takumik/keizu/pkg/cache"
	"github.com/takumik/keizu/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple formats)
	formats   []string // output formats: svg, png, pdf, dot, html, json
	sheet     string   // worksheet name
	font      string   // font family override
	direction string   // rank direction: TB or LR
	noCache   bool     // disable the artifact cache
	refresh   bool     // bypass cached results and re-render
}

// newRenderCmd creates the render command for generating diagrams.
//
// Default settings come from the config file: sheet Sheet1, direction TB,
// and the platform-resolved CJK font.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [workbook.xlsx]",
		Short: "Render a drawing ledger as a family-tree diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, html, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.sheet, "sheet", "s", "", "worksheet to read (default from config, normally Sheet1)")
	cmd.Flags().StringVar(&opts.font, "font", "", "font family override (default resolved per platform)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "rank direction: TB (default) or LR")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results and re-render")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// runRender loads the workbook, runs the pipeline, and writes one file per
// requested format.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		Sheet:     firstNonEmpty(opts.sheet, cfg.Ledger.Sheet),
		Font:      firstNonEmpty(opts.font, cfg.Render.Font),
		Direction: firstNonEmpty(opts.direction, cfg.Render.Direction),
		Formats:   opts.formats,
		Refresh:   opts.refresh,
		Logger:    logger,
	}

	p := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", input))
	spinner.Start()

	result, err := runner.Execute(ctx, data, pipeOpts)
	spinner.Stop()
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	return nil
}

// newRunner creates a pipeline runner with the configured cache backend.
// A configured cache scope prefixes every key so deployments sharing a
// backend stay isolated.
func newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	logger := loggerFromContext(ctx)
	c, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Scope+":")
	}
	return pipeline.NewRunner(c, keyer, logger), nil
}

// newCache selects the cache backend from config. A failed file backend
// degrades to no caching rather than failing the command.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.CacheBackendRedis {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	}
	c, err := cache.NewFileCache(cfg.CacheDir())
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return c, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
