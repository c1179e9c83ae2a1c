package store

import (
	"testing"

	"github.com/graphlens/graphlens/pkg/graph"
)

func TestNewRecord(t *testing.T) {
	snap := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Label: "Person", Depth: 0},
			{ID: "b", Label: "Company", Depth: 1},
		},
		Edges: []graph.Edge{{ID: "e1", Source: "a", Target: "b"}},
	}
	payload, err := graph.MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	rec := newRecord("who is a?", snap, payload)

	if rec.ID == "" {
		t.Error("record should get a generated ID")
	}
	if rec.NodeCount != 2 || rec.EdgeCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", rec.NodeCount, rec.EdgeCount)
	}
	if rec.QuestionHash != questionHash("who is a?") {
		t.Error("question hash mismatch")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	// The payload round-trips through the record.
	got, err := rec.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got.Nodes) != 2 || got.Nodes[0].ID != "a" {
		t.Errorf("decoded snapshot = %+v", got)
	}
}

func TestQuestionHashDeterministic(t *testing.T) {
	if questionHash("q") != questionHash("q") {
		t.Error("questionHash should be deterministic")
	}
	if questionHash("q") == questionHash("r") {
		t.Error("different questions should hash differently")
	}
}
