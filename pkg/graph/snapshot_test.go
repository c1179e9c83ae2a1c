package graph

import (
	"slices"
	"testing"
)

func TestNormalizeDuplicateNodes(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{
			{ID: "a", Name: "first", Depth: 0},
			{ID: "b", Depth: 1},
			{ID: "a", Name: "second", Depth: 2},
		},
	}

	out := s.Normalize()

	if len(out.Nodes) != 2 {
		t.Fatalf("NodeCount = %d, want 2", len(out.Nodes))
	}
	// Last write wins, first position retained.
	if out.Nodes[0].ID != "a" || out.Nodes[0].Name != "second" {
		t.Errorf("Nodes[0] = %+v, want id a with name second", out.Nodes[0])
	}
	if out.Nodes[0].Depth != 2 {
		t.Errorf("Depth = %d, want 2", out.Nodes[0].Depth)
	}
}

func TestNormalizeDropsDanglingEdges(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "ghost"},
			{ID: "e3", Source: "ghost", Target: "b"},
		},
	}

	out := s.Normalize()

	if len(out.Edges) != 1 {
		t.Fatalf("EdgeCount = %d, want 1", len(out.Edges))
	}
	if out.Edges[0].ID != "e1" {
		t.Errorf("Edges[0].ID = %s, want e1", out.Edges[0].ID)
	}
}

func TestNormalizeFillsRoleAndStyle(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		want  Role
	}{
		{"Depth0", 0, RoleStart},
		{"Depth1", 1, RoleIntermediate},
		{"Depth2", 2, RoleEnd},
		{"Depth5", 5, RoleEnd},
		{"Negative", -3, RoleStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{Nodes: []Node{{ID: "n", Depth: tt.depth}}}
			out := s.Normalize()
			if out.Nodes[0].Role != tt.want {
				t.Errorf("Role = %s, want %s", out.Nodes[0].Role, tt.want)
			}
			if out.Nodes[0].Style == (Style{}) {
				t.Error("Style not filled in")
			}
			if out.Nodes[0].Depth < 0 {
				t.Errorf("Depth = %d, want >= 0", out.Nodes[0].Depth)
			}
		})
	}
}

func TestAdjacency(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "c", Target: "a"},
			{ID: "e3", Source: "a", Target: "b"}, // duplicate link
			{ID: "e4", Source: "a", Target: "a"}, // self loop ignored
			{ID: "e5", Source: "a", Target: "zz"},
		},
	}

	adj := s.Adjacency()

	if got := adj["a"]; !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("adj[a] = %v, want [b c]", got)
	}
	if got := adj["b"]; !slices.Equal(got, []string{"a"}) {
		t.Errorf("adj[b] = %v, want [a]", got)
	}
	if got := adj["c"]; !slices.Equal(got, []string{"a"}) {
		t.Errorf("adj[c] = %v, want [a]", got)
	}
}

func TestEntryPoints(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{
			{ID: "root", Depth: 0},
			{ID: "mid", Depth: 1},
			{ID: "flagged", Depth: 3, Role: RoleStart},
			{ID: "listed", Depth: 2},
		},
		QueryEntityIDs: []string{"listed", "absent"},
	}

	got := s.EntryPoints()
	want := []string{"root", "flagged", "listed"}
	if !slices.Equal(got, want) {
		t.Errorf("EntryPoints() = %v, want %v", got, want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{
			{
				ID:    "a",
				Label: "Person",
				Name:  "Ada",
				Depth: 0,
				Properties: Properties{
					"age":    Number(36),
					"active": Bool(true),
					"bio":    String("mathematician"),
				},
			},
		},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "a", Label: "self"}},
	}

	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	back, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	if back.Nodes[0].Name != "Ada" {
		t.Errorf("Name = %s, want Ada", back.Nodes[0].Name)
	}
	if v, ok := back.Nodes[0].Properties["age"].AsNumber(); !ok || v != 36 {
		t.Errorf("age = %v %v, want 36 true", v, ok)
	}
	if v, ok := back.Nodes[0].Properties["bio"].AsString(); !ok || v != "mathematician" {
		t.Errorf("bio = %v %v, want mathematician true", v, ok)
	}
}

func TestValueNestedJSON(t *testing.T) {
	data := []byte(`{"nodes":[{"id":"n","properties":{"tags":["x","y"],"nested":{"k":1}}}],"edges":[]}`)

	s, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	v := s.Nodes[0].Properties["tags"]
	if v.Kind() != KindJSON {
		t.Fatalf("Kind = %v, want KindJSON", v.Kind())
	}
	raw, _ := v.Raw()
	if string(raw) != `["x","y"]` {
		t.Errorf("Raw = %s, want [\"x\",\"y\"]", raw)
	}
}
