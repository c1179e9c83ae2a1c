// Package canvas holds the renderable state of one graph query.
//
// A [Canvas] is the explicit state container behind the visual editor:
// it owns the disclosure engine (and through it the raw snapshot),
// the positioned visible node/edge lists, the selection, and a layout
// version counter. It is created at application start and reset between
// queries; there is no ambient global state.
//
// Snapshot arrival and hub expansion run the full disclose→layout
// pipeline and bump the layout version so renderers treat the new
// positions as authoritative. Local edits (add/update/remove/select)
// mutate the rendered lists directly and deliberately do not trigger a
// relayout, so small changes don't jolt the whole diagram.
//
// The canvas is single-threaded by design: all operations are expected
// to run sequentially on the UI goroutine between discrete user
// actions.
package canvas

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/graphlens/graphlens/pkg/disclosure"
	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/layout"
	"github.com/graphlens/graphlens/pkg/observability"
)

// VisibleNode is a snapshot node enriched with rendering state.
type VisibleNode struct {
	graph.Node

	Position   layout.Point `json:"position"`
	IsSelected bool         `json:"is_selected,omitempty"`

	// HiddenCount is non-zero only when the node is a hub with a
	// non-empty collapsed group.
	HiddenCount int `json:"hidden_count,omitempty"`

	// IsNew is true for one render cycle on nodes that appeared as a
	// direct result of an expand, for the entry animation.
	IsNew bool `json:"is_new,omitempty"`
}

// VisibleEdge is an edge whose endpoints are both visible.
type VisibleEdge = graph.Edge

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) { c.logger = l }
}

// WithSeed fixes the layout seed. Without it every recomputation draws
// a fresh seed, matching the stochastic placement of non-anchored
// nodes; tests use a fixed seed for reproducible positions.
func WithSeed(seed int64) Option {
	return func(c *Canvas) { c.seedFn = func() int64 { return seed } }
}

// Canvas is the state container for one query's rendered graph.
type Canvas struct {
	logger *log.Logger
	seedFn func() int64

	engine   *disclosure.Engine
	nodes    []VisibleNode
	edges    []VisibleEdge
	version  uint64
	selected string
}

// New creates an empty canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		logger: log.Default(),
		seedFn: func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset clears all graph state and selection. The layout version keeps
// counting up so renderers never mistake a new query for an old one.
func (c *Canvas) Reset() {
	c.engine = nil
	c.nodes = nil
	c.edges = nil
	c.selected = ""
	c.version++
}

// ApplySnapshot replaces the raw snapshot wholesale, recomputes the
// visible subset and its positions, and bumps the layout version.
// Selection is cleared; collapsed groups are derived fresh.
func (c *Canvas) ApplySnapshot(snap graph.Snapshot) {
	c.engine = disclosure.NewEngine(snap)
	c.selected = ""
	res := c.engine.Compute()
	c.relayout(res)
	c.logger.Debug("applied snapshot",
		"nodes", snap.NodeCount(),
		"edges", snap.EdgeCount(),
		"visible", len(c.nodes),
		"collapsed_hubs", len(res.Groups))
}

// Expand reveals the hidden neighbors of a hub and recomputes positions.
// Returns false (and changes nothing) when the node has no recorded
// hidden group.
func (c *Canvas) Expand(hubID string) bool {
	if c.engine == nil {
		return false
	}
	res, ok := c.engine.Expand(hubID)
	if !ok {
		return false
	}
	c.relayout(res)
	c.logger.Debug("expanded hub", "hub", hubID, "revealed", len(res.New))
	return true
}

// Nodes returns the ordered visible node list. The slice is the
// canvas's own state; renderers must treat it as read-only.
func (c *Canvas) Nodes() []VisibleNode { return c.nodes }

// Edges returns the ordered visible edge list.
func (c *Canvas) Edges() []VisibleEdge { return c.edges }

// LayoutVersion returns the counter identifying the current full
// layout. It increments on every recomputation; renderers seeing a new
// version snap to the new positions instead of interpolating.
func (c *Canvas) LayoutVersion() uint64 { return c.version }

// Snapshot returns the normalized raw snapshot, or false before any
// snapshot has been applied.
func (c *Canvas) Snapshot() (*graph.Snapshot, bool) {
	if c.engine == nil {
		return nil, false
	}
	return c.engine.Snapshot(), true
}

// AcknowledgeNew clears the IsNew flags after the renderer has played
// the entry animation.
func (c *Canvas) AcknowledgeNew() {
	for i := range c.nodes {
		c.nodes[i].IsNew = false
	}
}

// relayout positions a freshly computed visible subset and rebuilds the
// rendered lists. Runs synchronously to completion; the producer is
// expected to bound snapshot sizes upstream.
func (c *Canvas) relayout(res disclosure.Result) {
	start := time.Now()
	seed := c.seedFn()
	positions := layout.Compute(res.Nodes, res.Edges, layout.Options{Seed: seed})

	nodes := make([]VisibleNode, len(res.Nodes))
	for i, n := range res.Nodes {
		nodes[i] = VisibleNode{
			Node:        n,
			Position:    positions[n.ID],
			IsSelected:  n.ID == c.selected,
			HiddenCount: res.Groups.HiddenCount(n.ID),
			IsNew:       res.New[n.ID],
		}
	}

	c.nodes = nodes
	c.edges = append([]VisibleEdge(nil), res.Edges...)
	c.version++
	observability.Layout().OnLayoutComplete(len(nodes), time.Since(start))
}
