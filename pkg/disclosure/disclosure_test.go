package disclosure

import (
	"fmt"
	"slices"
	"testing"

	"github.com/graphlens/graphlens/pkg/graph"
)

// star builds a hub node with the given number of leaf neighbors.
func star(hubID string, leaves int) graph.Snapshot {
	s := graph.Snapshot{Nodes: []graph.Node{{ID: hubID, Depth: 1}}}
	for i := 0; i < leaves; i++ {
		leaf := fmt.Sprintf("leaf-%02d", i)
		s.Nodes = append(s.Nodes, graph.Node{ID: leaf, Depth: 2})
		s.Edges = append(s.Edges, graph.Edge{
			ID: fmt.Sprintf("e-%02d", i), Source: hubID, Target: leaf,
		})
	}
	return s
}

func TestNoHubsShowsEverything(t *testing.T) {
	// Degree exactly CollapseThreshold must not classify as a hub.
	s := star("hub", CollapseThreshold)

	res := NewEngine(s).Compute()

	if len(res.Nodes) != s.NodeCount() {
		t.Errorf("visible = %d, want full set %d", len(res.Nodes), s.NodeCount())
	}
	if len(res.Groups) != 0 {
		t.Errorf("Groups = %v, want empty", res.Groups)
	}
}

func TestHubThresholdBoundary(t *testing.T) {
	tests := []struct {
		name    string
		leaves  int
		wantHub bool
	}{
		{"AtThreshold", CollapseThreshold, false},
		{"AboveThreshold", CollapseThreshold + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewEngine(star("hub", tt.leaves)).Compute()
			if gotHub := len(res.Groups["hub"]) > 0; gotHub != tt.wantHub {
				t.Errorf("hub collapsed = %v, want %v (groups %v)", gotHub, tt.wantHub, res.Groups)
			}
		})
	}
}

func TestHubWithTenNeighborsHidesFive(t *testing.T) {
	res := NewEngine(star("hub", 10)).Compute()

	if got := res.Groups.HiddenCount("hub"); got != 10-InitialVisible {
		t.Errorf("HiddenCount = %d, want %d", got, 10-InitialVisible)
	}
	// hub + InitialVisible shown leaves visible
	if len(res.Nodes) != 1+InitialVisible {
		t.Errorf("visible = %d, want %d", len(res.Nodes), 1+InitialVisible)
	}
	// Hidden leaves must not appear in the visible edges.
	visible := res.VisibleSet()
	for _, e := range res.Edges {
		if !visible[e.Source] || !visible[e.Target] {
			t.Errorf("edge %s references hidden node", e.ID)
		}
	}
}

func TestEntryPointsNeverHidden(t *testing.T) {
	s := star("hub", 10)
	// Promote one leaf to a query entry point.
	for i := range s.Nodes {
		if s.Nodes[i].ID == "leaf-07" {
			s.Nodes[i].Depth = 0
		}
	}

	res := NewEngine(s).Compute()

	if !res.VisibleSet()["leaf-07"] {
		t.Error("depth-0 node was hidden")
	}
	if slices.Contains(res.Groups["hub"], "leaf-07") {
		t.Error("depth-0 node recorded in a hidden group")
	}
}

func TestExpandRevealsGroup(t *testing.T) {
	eng := NewEngine(star("hub", 10))
	eng.Compute()

	res, ok := eng.Expand("hub")
	if !ok {
		t.Fatal("Expand returned ok=false for a collapsed hub")
	}
	if len(res.Groups["hub"]) != 0 {
		t.Errorf("hub entry still present: %v", res.Groups)
	}
	if len(res.Nodes) != 11 {
		t.Errorf("visible = %d, want 11", len(res.Nodes))
	}
	// Previously hidden leaves are flagged new for the entry animation.
	if len(res.New) != 10-InitialVisible {
		t.Errorf("New = %d ids, want %d", len(res.New), 10-InitialVisible)
	}
	for id := range res.New {
		if !res.VisibleSet()[id] {
			t.Errorf("new node %s not visible", id)
		}
	}
}

func TestExpandWithoutGroupIsNoop(t *testing.T) {
	eng := NewEngine(star("hub", 10))
	before := eng.Compute()

	if _, ok := eng.Expand("leaf-01"); ok {
		t.Error("Expand of a non-hub reported a change")
	}
	if _, ok := eng.Expand("missing"); ok {
		t.Error("Expand of an unknown id reported a change")
	}

	after := eng.Compute()
	if len(after.Nodes) != len(before.Nodes) {
		t.Errorf("visible changed: %d -> %d", len(before.Nodes), len(after.Nodes))
	}
	if after.Groups.HiddenCount("hub") != before.Groups.HiddenCount("hub") {
		t.Error("groups changed after no-op expand")
	}
}

func TestSharedNeighborNotReHidden(t *testing.T) {
	// Two hubs sharing all neighbors: once hub-a shows a neighbor, hub-b
	// must not hide it again.
	s := graph.Snapshot{Nodes: []graph.Node{{ID: "hub-a", Depth: 1}, {ID: "hub-b", Depth: 1}}}
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("n-%02d", i)
		s.Nodes = append(s.Nodes, graph.Node{ID: id, Depth: 2})
		s.Edges = append(s.Edges,
			graph.Edge{ID: fmt.Sprintf("a-%02d", i), Source: "hub-a", Target: id},
			graph.Edge{ID: fmt.Sprintf("b-%02d", i), Source: "hub-b", Target: id},
		)
	}

	res := NewEngine(s).Compute()
	visible := res.VisibleSet()

	for hubID, group := range res.Groups {
		for _, id := range group {
			if visible[id] {
				t.Errorf("hub %s still lists visible node %s", hubID, id)
			}
		}
		if len(group) == 0 {
			t.Errorf("hub %s has an empty group entry", hubID)
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	s := star("hub", 20)

	first := NewEngine(s).Compute()
	for i := 0; i < 5; i++ {
		again := NewEngine(s).Compute()
		if !slices.Equal(first.Groups["hub"], again.Groups["hub"]) {
			t.Fatalf("run %d: groups differ: %v vs %v", i, first.Groups["hub"], again.Groups["hub"])
		}
		if len(first.Nodes) != len(again.Nodes) {
			t.Fatalf("run %d: visible count differs", i)
		}
		for j := range first.Nodes {
			if first.Nodes[j].ID != again.Nodes[j].ID {
				t.Fatalf("run %d: visible order differs at %d", i, j)
			}
		}
	}
}

func TestNeighborOrderingPrefersDegree(t *testing.T) {
	// hub has 10 neighbors; two of them are themselves well connected
	// and must win the visible slots over plain leaves.
	s := star("hub", 10)
	for i := 0; i < 3; i++ {
		extra := fmt.Sprintf("x-%d", i)
		s.Nodes = append(s.Nodes, graph.Node{ID: extra, Depth: 2})
		s.Edges = append(s.Edges,
			graph.Edge{ID: "d1-" + extra, Source: "leaf-08", Target: extra},
			graph.Edge{ID: "d2-" + extra, Source: "leaf-09", Target: extra},
		)
	}

	res := NewEngine(s).Compute()
	visible := res.VisibleSet()

	if !visible["leaf-08"] || !visible["leaf-09"] {
		t.Errorf("high-degree neighbors hidden; visible: %v", visible)
	}
}
