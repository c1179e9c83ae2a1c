// Package disclosure computes which nodes of a raw snapshot are visible.
//
// Densely connected nodes (hubs) would clutter a node-link diagram, so
// their low-priority neighbors are hidden behind a count badge until
// explicitly expanded. The engine owns the raw snapshot and the map of
// collapsed groups; the layout engine only ever sees the filtered view.
//
// Given the same snapshot and the same sequence of Expand calls, the
// visible set and collapsed groups are identical every time: adjacency
// is built in edge input order and all sorts are stable.
package disclosure

import (
	"slices"

	"github.com/graphlens/graphlens/pkg/graph"
)

// Collapsing thresholds.
const (
	// CollapseThreshold is the neighbor count a node must exceed to be
	// classified as a hub. A node with exactly this many neighbors is
	// never a hub.
	CollapseThreshold = 8

	// InitialVisible is how many of a hub's neighbors stay shown while
	// the hub is collapsed.
	InitialVisible = 5
)

// CollapsedGroups maps a hub node ID to the ordered list of neighbor IDs
// hidden behind it. An entry exists only while its list is non-empty.
type CollapsedGroups map[string][]string

// HiddenCount returns how many neighbors are hidden behind the hub.
func (g CollapsedGroups) HiddenCount(hubID string) int {
	return len(g[hubID])
}

// Clone returns a deep copy of the groups map.
func (g CollapsedGroups) Clone() CollapsedGroups {
	out := make(CollapsedGroups, len(g))
	for id, hidden := range g {
		out[id] = slices.Clone(hidden)
	}
	return out
}

// Result is one visibility computation over the raw snapshot.
type Result struct {
	// Nodes are the visible nodes in snapshot order.
	Nodes []graph.Node
	// Edges are the snapshot edges whose endpoints are both visible.
	Edges []graph.Edge
	// Groups maps each still-collapsed hub to its hidden neighbors.
	Groups CollapsedGroups
	// New holds IDs that became visible as a direct result of the latest
	// Expand call. Empty for snapshot-driven computations.
	New map[string]bool
}

// VisibleSet returns the set of visible node IDs.
func (r *Result) VisibleSet() map[string]bool {
	set := make(map[string]bool, len(r.Nodes))
	for i := range r.Nodes {
		set[r.Nodes[i].ID] = true
	}
	return set
}

// Engine computes visible subsets of one raw snapshot.
//
// The engine owns the snapshot and the collapsed groups exclusively.
// It is not safe for concurrent use; all operations are expected to run
// on a single goroutine between discrete user actions.
type Engine struct {
	snapshot graph.Snapshot
	adjacency map[string][]string
	expanded  map[string]bool
	groups    CollapsedGroups
	visible   map[string]bool
}

// NewEngine creates an engine over a raw snapshot. The snapshot is
// normalized on ingestion (duplicate IDs resolved, dangling edges
// dropped) and retained as ground truth for later recomputations.
func NewEngine(snap graph.Snapshot) *Engine {
	normalized := snap.Normalize()
	return &Engine{
		snapshot:  normalized,
		adjacency: normalized.Adjacency(),
		expanded:  make(map[string]bool),
		groups:    CollapsedGroups{},
	}
}

// Snapshot returns the normalized raw snapshot the engine computes from.
func (e *Engine) Snapshot() *graph.Snapshot { return &e.snapshot }

// Groups returns the current collapsed groups. The returned map is the
// engine's own state; callers must not mutate it.
func (e *Engine) Groups() CollapsedGroups { return e.groups }

// Compute derives the visible subset from the raw snapshot against the
// hubs not yet expanded. The common case of a snapshot with no hubs
// short-circuits to the full node set with no groups recorded.
func (e *Engine) Compute() Result {
	res := e.compute()
	e.groups = res.Groups
	e.visible = res.VisibleSet()
	return res
}

// Expand reveals the hidden neighbors of a hub. Calling it for a node
// with no recorded hidden group is a no-op and triggers no
// recomputation; the engine state is unchanged and ok is false.
//
// A successful expand deletes the hub's entry, recomputes the visible
// set from the raw snapshot against the remaining collapsed groups, and
// marks nodes absent from the previous visible set in Result.New. The
// recomputation is full, not incremental: removing one hub's
// restriction can change which neighbors other hubs need shown.
func (e *Engine) Expand(hubID string) (Result, bool) {
	if len(e.groups[hubID]) == 0 {
		return Result{}, false
	}

	e.expanded[hubID] = true
	prev := e.visible

	res := e.compute()
	res.New = make(map[string]bool)
	for i := range res.Nodes {
		if id := res.Nodes[i].ID; !prev[id] {
			res.New[id] = true
		}
	}

	e.groups = res.Groups
	e.visible = res.VisibleSet()
	return res, true
}

func (e *Engine) compute() Result {
	snap := &e.snapshot

	// Entry points are never hidden.
	forceVisible := make(map[string]bool, len(snap.Nodes))
	for _, id := range snap.EntryPoints() {
		forceVisible[id] = true
	}

	// A hub itself is always shown, even while collapsed. Hubs the user
	// already expanded stay hubs but are no longer collapsible.
	var collapsible []string
	for i := range snap.Nodes {
		id := snap.Nodes[i].ID
		if len(e.adjacency[id]) > CollapseThreshold {
			forceVisible[id] = true
			if !e.expanded[id] {
				collapsible = append(collapsible, id)
			}
		}
	}

	// Common case: nothing to collapse, everything is visible.
	if len(collapsible) == 0 {
		return Result{
			Nodes:  slices.Clone(snap.Nodes),
			Edges:  slices.Clone(snap.Edges),
			Groups: CollapsedGroups{},
		}
	}

	hidden := make(map[string]bool)
	groups := make(CollapsedGroups, len(collapsible))

	for _, hubID := range collapsible {
		neighbors := slices.Clone(e.adjacency[hubID])

		// Already force-visible members first, then by descending degree.
		// The stable sort breaks ties by input order.
		slices.SortStableFunc(neighbors, func(a, b string) int {
			av, bv := forceVisible[a], forceVisible[b]
			if av != bv {
				if av {
					return -1
				}
				return 1
			}
			return len(e.adjacency[b]) - len(e.adjacency[a])
		})

		shown := neighbors
		if len(shown) > InitialVisible {
			shown = neighbors[:InitialVisible]
		}
		for _, id := range shown {
			// Shown neighbors become force-visible so a later hub
			// cannot re-hide them.
			forceVisible[id] = true
		}

		var group []string
		for _, id := range neighbors[len(shown):] {
			if !forceVisible[id] {
				group = append(group, id)
				hidden[id] = true
			}
		}
		if len(group) > 0 {
			groups[hubID] = group
		}
	}

	// Final visible set: everything outside the hidden union, plus all
	// force-visible nodes.
	visible := make(map[string]bool, len(snap.Nodes))
	var nodes []graph.Node
	for i := range snap.Nodes {
		id := snap.Nodes[i].ID
		if !hidden[id] || forceVisible[id] {
			visible[id] = true
			nodes = append(nodes, snap.Nodes[i])
		}
	}

	// Another hub may have exposed members of this hub's group after it
	// was recorded; drop them, and drop entries that become empty.
	for hubID, group := range groups {
		group = slices.DeleteFunc(group, func(id string) bool { return visible[id] })
		if len(group) == 0 {
			delete(groups, hubID)
		} else {
			groups[hubID] = group
		}
	}

	var edges []graph.Edge
	for _, edge := range snap.Edges {
		if visible[edge.Source] && visible[edge.Target] {
			edges = append(edges, edge)
		}
	}

	return Result{Nodes: nodes, Edges: edges, Groups: groups}
}
