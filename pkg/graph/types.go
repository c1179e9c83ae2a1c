package graph

// =============================================================================
// Roles and Styles
// =============================================================================

// Role positions a node relative to the query that produced it.
type Role string

const (
	// RoleStart marks a query entry point (depth 0).
	RoleStart Role = "start"
	// RoleIntermediate marks a node one hop from an entry point (depth 1).
	RoleIntermediate Role = "intermediate"
	// RoleEnd marks a result node two or more hops out (depth >= 2).
	RoleEnd Role = "end"
)

// RoleForDepth derives the role from a node's distance to the query's
// entry points. This mapping also selects the rendering variant.
func RoleForDepth(depth int) Role {
	switch {
	case depth <= 0:
		return RoleStart
	case depth == 1:
		return RoleIntermediate
	default:
		return RoleEnd
	}
}

// Style carries rendering hints for a node.
type Style struct {
	Color string  `json:"color,omitempty"`
	Icon  string  `json:"icon,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// StyleForRole returns the default rendering variant for a role.
func StyleForRole(role Role) Style {
	switch role {
	case RoleStart:
		return Style{Color: "#2f6fed", Icon: "target", Size: 28}
	case RoleIntermediate:
		return Style{Color: "#7c5cd6", Icon: "link", Size: 22}
	default:
		return Style{Color: "#3aa675", Icon: "dot", Size: 18}
	}
}

// =============================================================================
// Node and Edge
// =============================================================================

// Node is one vertex of a raw snapshot.
//
// ID must be unique within a snapshot; uniqueness violations are a
// producer error and resolve last-write-wins in [Snapshot.Normalize].
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"` // type name (e.g. "Person")
	Name       string     `json:"name,omitempty"`  // display string
	Properties Properties `json:"properties,omitempty"`
	Depth      int        `json:"depth"` // hops from the query's entry points
	Role       Role       `json:"role,omitempty"`
	Style      Style      `json:"style,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a directed connection between two snapshot nodes.
// Source and Target must reference IDs present in the same snapshot;
// edges that don't are dropped before layout and never reach the
// simulation.
type Edge struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Label      string     `json:"label,omitempty"` // relation type
	Properties Properties `json:"properties,omitempty"`
}

// Touches reports whether the edge references the node as either endpoint.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
