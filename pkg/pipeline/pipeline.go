// Package pipeline provides the core rendering pipeline.
//
// This package implements the complete parse → build → render pipeline that
// is shared by the CLI and the HTTP server. Centralizing it keeps caching
// and validation behavior identical across both entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read the parent-child ledger from an Excel workbook
//  2. Build: Assemble the genealogy tree from the ledger records
//  3. Render: Generate output in various formats (SVG, PNG, PDF, DOT, HTML, JSON)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Sheet:   "Sheet1",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, ledgerBytes, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/takumik/keizu/pkg/cache"
	"github.com/takumik/keizu/pkg/errors"
	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/ledger"
	"github.com/takumik/keizu/pkg/render"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatHTML = "html"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatHTML: true,
	FormatJSON: true,
}

// ValidDirections is the set of supported rank directions.
var ValidDirections = map[string]bool{
	render.DirectionTopBottom: true,
	render.DirectionLeftRight: true,
}

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Sheet   string `json:"sheet,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Font      string   `json:"font,omitempty"`
	Direction string   `json:"direction,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Ledger is the parsed workbook data.
	Ledger *ledger.Ledger

	// Tree is the genealogy built from the ledger.
	Tree *genealogy.Tree

	// TreeHash is the content hash of the serialized tree.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	EdgeCount   int
	ParseTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the genealogy came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot, html, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks that a rank direction is valid.
func ValidateDirection(direction string) error {
	if !ValidDirections[direction] {
		return errors.New(errors.ErrCodeInvalidDirection,
			"invalid direction: %q (must be TB or LR)", direction)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Sheet == "" {
		o.Sheet = ledger.DefaultSheet
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Direction == "" {
		o.Direction = render.DirectionTopBottom
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// Style builds the render style from the options. The font falls back to
// the platform default inside NewStyle when unset.
func (o *Options) Style() render.Style {
	s := render.NewStyle(o.Font)
	if o.Direction != "" {
		s.RankDir = o.Direction
	}
	return s
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// The resolved style is used rather than the raw options so an empty font
// and the explicit platform default share a cache entry.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	s := o.Style()
	return cache.ArtifactKeyOpts{
		Format:  format,
		Font:    s.FontName,
		RankDir: s.RankDir,
	}
}
