package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/graphlens/graphlens/pkg/cache"
	"github.com/graphlens/graphlens/pkg/canvas"
	"github.com/graphlens/graphlens/pkg/disclosure"
	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/layout"
	"github.com/graphlens/graphlens/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
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

// Execute runs the complete disclose → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, snap graph.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Disclose
	discloseStart := time.Now()
	engine := disclosure.NewEngine(snap)
	disclosed := engine.Compute()
	if opts.ExpandAll {
		disclosed = expandAll(engine, disclosed)
	}
	result.Snapshot = engine.Snapshot()
	result.Disclosed = disclosed
	result.Stats.DiscloseTime = time.Since(discloseStart)
	result.Stats.NodeCount = len(disclosed.Nodes)
	result.Stats.EdgeCount = len(disclosed.Edges)
	result.Stats.HiddenCount = len(result.Snapshot.Nodes) - len(disclosed.Nodes)

	r.Logger.Info("disclosed graph",
		"visible", result.Stats.NodeCount,
		"hidden", result.Stats.HiddenCount,
		"hubs", len(disclosed.Groups),
		"duration", result.Stats.DiscloseTime)

	// The visible subgraph hashes the disclosure output, so expanding a
	// hub produces a different layout key.
	result.GraphHash = visibleHash(disclosed)

	// Stage 2: Layout
	layoutStart := time.Now()
	positions, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, disclosed, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = positions
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(positions),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, disclosed, positions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo runs the force simulation with caching and
// returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, disclosed disclosure.Result, graphHash string, opts Options) (map[string]layout.Point, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	ticks := layout.Ticks(len(disclosed.Nodes))
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts(ticks))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached map[string]layout.Point
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
			// Corrupt entry falls through to recompute.
		}
	}

	positions := layout.Compute(disclosed.Nodes, disclosed.Edges, layout.Options{Seed: opts.Seed})

	if data, err := json.Marshal(positions); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return positions, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, disclosed disclosure.Result, opts Options) (map[string]layout.Point, error) {
	positions, _, err := r.ComputeLayoutWithCacheInfo(ctx, disclosed, visibleHash(disclosed), opts)
	return positions, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, disclosed disclosure.Result, positions map[string]layout.Point, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(positions)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
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
			return artifacts, true, nil
		}
	}

	nodes, edges := buildView(disclosed, positions)
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(nodes, edges, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, disclosed disclosure.Result, positions map[string]layout.Point, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, disclosed, positions, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// expandAll expands every collapsed hub until none remain. Hubs are
// expanded in sorted ID order so the result is deterministic.
func expandAll(engine *disclosure.Engine, res disclosure.Result) disclosure.Result {
	for len(res.Groups) > 0 {
		hubs := make([]string, 0, len(res.Groups))
		for hub := range res.Groups {
			hubs = append(hubs, hub)
		}
		slices.Sort(hubs)

		next, ok := engine.Expand(hubs[0])
		if !ok {
			break
		}
		res = next
	}
	return res
}

// visibleHash hashes the visible subgraph plus its collapsed groups.
func visibleHash(disclosed disclosure.Result) string {
	data, _ := json.Marshal(struct {
		Nodes  []graph.Node               `json:"nodes"`
		Edges  []graph.Edge               `json:"edges"`
		Groups disclosure.CollapsedGroups `json:"groups"`
	}{disclosed.Nodes, disclosed.Edges, disclosed.Groups})
	return cache.Hash(data)
}

// buildView joins the disclosure result with layout positions into the
// renderable node list.
func buildView(disclosed disclosure.Result, positions map[string]layout.Point) ([]canvas.VisibleNode, []canvas.VisibleEdge) {
	nodes := make([]canvas.VisibleNode, 0, len(disclosed.Nodes))
	for _, n := range disclosed.Nodes {
		nodes = append(nodes, canvas.VisibleNode{
			Node:        n,
			Position:    positions[n.ID],
			HiddenCount: disclosed.Groups.HiddenCount(n.ID),
		})
	}
	return nodes, disclosed.Edges
}

// renderFormat produces one artifact.
func renderFormat(nodes []canvas.VisibleNode, edges []canvas.VisibleEdge, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(View{Nodes: nodes, Edges: edges}, "", "  ")
	case FormatDOT:
		return []byte(nodelink.ToDOT(nodes, edges, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		return nodelink.RenderSVG(nodelink.ToDOT(nodes, edges, nodelink.Options{Detailed: opts.Detailed}))
	case FormatPNG:
		return nodelink.RenderPNG(nodelink.ToDOT(nodes, edges, nodelink.Options{Detailed: opts.Detailed}))
	default:
		return nil, ValidateFormat(format)
	}
}
