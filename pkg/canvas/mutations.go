package canvas

import (
	"slices"

	"github.com/google/uuid"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/layout"
)

// Local edits apply to the rendered node/edge lists only and never
// trigger a relayout; the next snapshot from the server is the source
// of truth. Callers are expected to have persisted the edit server-side
// before applying it here.

// addNodeGap is the horizontal offset for heuristically placed nodes.
const addNodeGap = 160

// SelectNode marks exactly one node selected and clears the flag on all
// others. An empty ID clears the selection entirely.
func (c *Canvas) SelectNode(id string) {
	c.selected = id
	for i := range c.nodes {
		c.nodes[i].IsSelected = c.nodes[i].ID == id
	}
}

// SelectedNode returns the currently selected node, or nil.
func (c *Canvas) SelectedNode() *VisibleNode {
	if c.selected == "" {
		return nil
	}
	for i := range c.nodes {
		if c.nodes[i].ID == c.selected {
			return &c.nodes[i]
		}
	}
	return nil
}

// UpdateNodeData replaces a node's property map. When the new
// properties carry a string "name", the display name follows; otherwise
// the previous name is retained. Returns false for an unknown ID.
func (c *Canvas) UpdateNodeData(id string, props graph.Properties) bool {
	for i := range c.nodes {
		if c.nodes[i].ID != id {
			continue
		}
		c.nodes[i].Properties = props.Clone()
		if name, ok := props.GetString("name"); ok {
			c.nodes[i].Name = name
		}
		return true
	}
	return false
}

// RemoveNode removes a node and cascades to every edge referencing it
// as source or target, so no dangling edges remain. Removing the
// selected node clears the selection. Returns false for an unknown ID.
func (c *Canvas) RemoveNode(id string) bool {
	before := len(c.nodes)
	c.nodes = slices.DeleteFunc(c.nodes, func(n VisibleNode) bool { return n.ID == id })
	if len(c.nodes) == before {
		return false
	}
	c.edges = slices.DeleteFunc(c.edges, func(e VisibleEdge) bool { return e.Touches(id) })
	if c.selected == id {
		c.selected = ""
	}
	return true
}

// AddNode appends a node at a heuristic position: to the right of the
// current rightmost node, at the vertical average of existing nodes, or
// the origin for an empty canvas. The node is tagged with the default
// intermediate role and style pending confirmation from the server.
// A missing ID is filled with a generated one. Returns the placed node.
func (c *Canvas) AddNode(n graph.Node) *VisibleNode {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Role == "" {
		n.Role = graph.RoleIntermediate
		n.Depth = 1
	}
	if n.Style == (graph.Style{}) {
		n.Style = graph.StyleForRole(n.Role)
	}

	pos := layout.Point{}
	if len(c.nodes) > 0 {
		maxX := c.nodes[0].Position.X
		sumY := 0.0
		for i := range c.nodes {
			maxX = max(maxX, c.nodes[i].Position.X)
			sumY += c.nodes[i].Position.Y
		}
		pos = layout.Point{X: maxX + addNodeGap, Y: sumY / float64(len(c.nodes))}
	}

	c.nodes = append(c.nodes, VisibleNode{Node: n, Position: pos})
	return &c.nodes[len(c.nodes)-1]
}

// AddEdge appends an edge directly. Endpoint existence is not validated
// at this layer; the editing UI builds edges from schema metadata and
// owns that check. A missing ID is filled with a generated one.
func (c *Canvas) AddEdge(e graph.Edge) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c.edges = append(c.edges, e)
}
