// Package pipeline provides the core rendering pipeline for GraphLens.
//
// This package implements the disclose → layout → render pipeline shared
// by the CLI and the serve command. Centralizing it keeps behavior
// consistent across entry points and puts the caching logic in one place.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Disclose: Compute the visible subset of the snapshot, collapsing
//     high-degree hubs behind "+N" groups.
//  2. Layout: Run the force simulation over the visible subgraph.
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON).
//
// Disclosure is deterministic and cheap, so only layout and render
// results are cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, snap, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/graphlens/graphlens/pkg/cache"
	"github.com/graphlens/graphlens/pkg/canvas"
	"github.com/graphlens/graphlens/pkg/disclosure"
	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/layout"
)

const (
	// DefaultSeed is the default random seed for reproducible layouts.
	// Interactive surfaces pass their own; batch renders keep outputs
	// stable across runs.
	DefaultSeed = int64(42)
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for request payloads.
type Options struct {
	// Disclosure options
	ExpandAll bool `json:"expand_all,omitempty"` // Expand every collapsed hub before layout

	// Layout options
	Seed int64 `json:"seed,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses the cache for reads (results are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the normalized input graph.
	Snapshot *graph.Snapshot

	// GraphHash is the content hash of the visible subgraph.
	GraphHash string

	// Disclosed is the visibility computation the layout ran over.
	Disclosed disclosure.Result

	// Positions maps visible node IDs to layout coordinates.
	Positions map[string]layout.Point

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int // visible nodes
	EdgeCount    int // visible edges
	HiddenCount  int // nodes collapsed behind hubs
	DiscloseTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each cached pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
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

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(ticks int) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:  o.Seed,
		Ticks: ticks,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme := ""
	if o.Detailed {
		theme = "detailed"
	}
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  theme,
	}
}

// View is the JSON artifact payload: the positioned visible state,
// ready for a client to draw without running the pipeline itself.
type View struct {
	Nodes []canvas.VisibleNode `json:"nodes"`
	Edges []canvas.VisibleEdge `json:"edges"`
	Meta  map[string]int       `json:"meta,omitempty"`
}
