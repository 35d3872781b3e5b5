// Package pipeline runs the fetch → layout → render pipeline for a bracket.
//
// The same runner backs the CLI render command and the HTTP server, so
// defaults, validation and artifact caching behave identically at every
// entry point.
//
// # Stages
//
//  1. Fetch: read the match list from the tournament backend or a local file
//  2. Layout: classify the bracket and compute boxes, connectors and labels
//  3. Render: produce SVG, PNG, JSON or DOT artifacts
//
// Match lists are never cached: a bracket changes while it is being played.
// Rendered artifacts are cached under a hash of the match list and of every
// option that changes the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	src := arena.NewClient(url, c, cache.TTLProblem)
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Style:   "handdrawn",
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSeed is the hand-drawn jitter seed.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG pixel scale.
	DefaultScale = 2.0

	// DefaultTitleWorkers bounds concurrent problem fetches.
	DefaultTitleWorkers = 4
)

// Visual styles.
const (
	StyleSimple    = "simple"
	StyleHanddrawn = "handdrawn"
)

// DefaultStyle is the default visual style.
const DefaultStyle = StyleSimple

// Views. The bracket view is the positioned layout; the node-link view is a
// Graphviz rendering of the raw match graph, useful when a bracket is too
// malformed to lay out.
const (
	ViewBracket  = "bracket"
	ViewNodelink = "nodelink"
)

// DefaultView is the default visualization.
const DefaultView = ViewBracket

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats maps each view to the formats it can produce.
var ValidFormats = map[string]map[string]bool{
	ViewBracket:  {FormatSVG: true, FormatPNG: true, FormatJSON: true},
	ViewNodelink: {FormatSVG: true, FormatPNG: true, FormatDOT: true},
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple:    true,
	StyleHanddrawn: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON so the server can
// accept it from query parameters and log it.
type Options struct {
	// Layout options
	View   string `json:"view,omitempty"`
	Strict bool   `json:"strict,omitempty"`
	Titles bool   `json:"titles,omitempty"` // fetch problem titles for the third box line

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Seed        uint64   `json:"seed,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Interactive bool     `json:"interactive,omitempty"` // SVG hover highlighting
	Detailed    bool     `json:"detailed,omitempty"`    // node-link labels with state and results

	// Refresh bypasses the artifact and problem caches.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Matches is the fetched match list.
	Matches []bracket.Match

	// BracketHash is the content hash of the match list.
	BracketHash string

	// Topology is the classified bracket kind.
	Topology bracket.Topology

	// Layout is the drawing instruction list. Empty for the node-link view.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MatchCount int
	BoxCount   int
	Skipped    int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateView checks that a view is known.
func ValidateView(view string) error {
	if _, ok := ValidFormats[view]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid view: %q (must be one of: bracket, nodelink)", view)
	}
	return nil
}

// ValidateFormat checks that a format can be produced by view.
func ValidateFormat(view, format string) error {
	if !ValidFormats[view][format] {
		if view == ViewNodelink {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, dot)", format)
		}
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks every format against view.
func ValidateFormats(view string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(view, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple, handdrawn)", style)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the options.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if err := ValidateFormats(o.View, o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	o.validated = true
	return nil
}

// SetDefaults fills every unset field.
func (o *Options) SetDefaults() {
	if o.View == "" {
		o.View = DefaultView
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsNodelink reports whether the node-link view was requested.
func (o *Options) IsNodelink() bool {
	return o.View == ViewNodelink
}

// LayoutOptions converts the options into layout engine options.
func (o *Options) LayoutOptions(titles map[string]string) []layout.Option {
	var opts []layout.Option
	if o.Strict {
		opts = append(opts, layout.WithStrict())
	}
	if len(titles) > 0 {
		opts = append(opts, layout.WithProblemTitles(titles))
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		View:     o.View,
		Format:   format,
		Strict:   o.Strict,
		Titles:   o.Titles,
		Detailed: o.Detailed,
	}
	switch format {
	case FormatSVG:
		k.Style, k.Seed, k.Interactive = o.Style, o.Seed, o.Interactive
	case FormatJSON:
		k.Style, k.Seed = o.Style, o.Seed
	case FormatPNG:
		k.Scale = o.Scale
	}
	if o.IsNodelink() {
		k.Style, k.Seed, k.Interactive, k.Scale = "", 0, false, 0
	}
	return k
}
