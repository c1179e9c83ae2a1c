package graph

// =============================================================================
// Snapshot - Raw Ground Truth
// =============================================================================

// Snapshot is the last full node/edge set received for one query.
// It replaces any prior snapshot wholesale; there is no incremental
// merge between queries.
type Snapshot struct {
	Nodes          []Node   `json:"nodes"`
	Edges          []Edge   `json:"edges"`
	QueryEntityIDs []string `json:"query_entity_ids,omitempty"`
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.Nodes) }

// EdgeCount returns the number of edges in the snapshot.
func (s *Snapshot) EdgeCount() int { return len(s.Edges) }

// Node returns the node with the given ID and true, or nil and false.
// Lookup is linear; callers iterating many IDs should use NodeSet.
func (s *Snapshot) Node(id string) (*Node, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}

// NodeSet returns the set of node IDs present in the snapshot.
func (s *Snapshot) NodeSet() map[string]bool {
	set := make(map[string]bool, len(s.Nodes))
	for i := range s.Nodes {
		set[s.Nodes[i].ID] = true
	}
	return set
}

// Normalize returns a cleaned copy of the snapshot:
//
//   - Duplicate node IDs resolve last-write-wins: the final occurrence's
//     data is kept at the first occurrence's position, so ordering stays
//     deterministic while the producer's latest data wins.
//   - Negative depths clamp to zero.
//   - Empty roles are derived from depth.
//   - Zero styles are filled in from the role.
//   - Edges referencing unknown node IDs are dropped.
//
// The receiver is not modified.
func (s *Snapshot) Normalize() Snapshot {
	pos := make(map[string]int, len(s.Nodes))
	nodes := make([]Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Depth < 0 {
			n.Depth = 0
		}
		if n.Role == "" {
			n.Role = RoleForDepth(n.Depth)
		}
		if n.Style == (Style{}) {
			n.Style = StyleForRole(n.Role)
		}
		if i, seen := pos[n.ID]; seen {
			nodes[i] = n // last write wins
			continue
		}
		pos[n.ID] = len(nodes)
		nodes = append(nodes, n)
	}

	edges := make([]Edge, 0, len(s.Edges))
	for _, e := range s.Edges {
		_, okSrc := pos[e.Source]
		_, okDst := pos[e.Target]
		if okSrc && okDst {
			edges = append(edges, e)
		}
	}

	return Snapshot{
		Nodes:          nodes,
		Edges:          edges,
		QueryEntityIDs: append([]string(nil), s.QueryEntityIDs...),
	}
}

// Adjacency builds an undirected neighbor map from all edges whose
// endpoints both exist in the snapshot. Neighbor lists are deduplicated
// and kept in edge input order, so degree counts and downstream sorts
// are deterministic for a given snapshot.
func (s *Snapshot) Adjacency() map[string][]string {
	present := s.NodeSet()
	adj := make(map[string][]string, len(s.Nodes))
	seen := make(map[[2]string]bool, len(s.Edges)*2)

	link := func(from, to string) {
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[from] = append(adj[from], to)
	}

	for _, e := range s.Edges {
		if !present[e.Source] || !present[e.Target] || e.Source == e.Target {
			continue
		}
		link(e.Source, e.Target)
		link(e.Target, e.Source)
	}
	return adj
}

// EntryPoints returns the IDs of the query's entry points: every node
// with depth 0 or role start, plus any explicitly listed query entity
// that exists in the snapshot. Order follows node input order.
func (s *Snapshot) EntryPoints() []string {
	listed := make(map[string]bool, len(s.QueryEntityIDs))
	for _, id := range s.QueryEntityIDs {
		listed[id] = true
	}

	var entries []string
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.Depth == 0 || n.Role == RoleStart || listed[n.ID] {
			entries = append(entries, n.ID)
		}
	}
	return entries
}
