package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/stream"
)

func replaySnapshot() graph.Snapshot {
	snap := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "p1", Name: "Ada", Label: "Person", Depth: 0},
			{ID: "c1", Name: "Analytical Engines Ltd", Label: "Company", Depth: 1},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "p1", Target: "c1", Label: "WORKS_AT"},
		},
		QueryEntityIDs: []string{"p1"},
	}
	return snap.Normalize()
}

func newReplayServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	srv := httptest.NewServer(c.serveRouter(replaySnapshot(), time.Millisecond, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestServeHealthz(t *testing.T) {
	srv := newReplayServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestServeSnapshotEndpoint(t *testing.T) {
	srv := newReplayServer(t)

	resp, err := http.Get(srv.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("GET /api/snapshot: %v", err)
	}
	defer resp.Body.Close()

	snap, err := graph.ReadSnapshot(resp.Body)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if len(snap.Nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(snap.Nodes))
	}
	if len(snap.Edges) != 1 {
		t.Errorf("got %d edges, want 1", len(snap.Edges))
	}
}

func TestServeRejectsEmptyQuestion(t *testing.T) {
	srv := newReplayServer(t)

	resp, err := http.Post(srv.URL+"/api/query/stream", "application/json", strings.NewReader(`{"question":""}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// The replay stream must be consumable by the same session client the
// query command uses.
func TestServeReplayRoundTrip(t *testing.T) {
	srv := newReplayServer(t)

	session := stream.NewSession(srv.URL+"/api/query/stream", stream.WithLogger(log.New(io.Discard)))

	type outcome struct {
		final string
		err   error
	}
	done := make(chan outcome, 1)

	var (
		snap   *graph.Snapshot
		chunks int
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session.Start(ctx, stream.Request{Question: "who does Ada work for?"}, stream.Callbacks{
		OnMetadata: func(meta stream.Metadata) { snap = meta.Graph },
		OnChunk:    func(fragment, accumulated string) { chunks++ },
		OnDone:     func(final string) { done <- outcome{final: final} },
		OnError:    func(err error) { done <- outcome{err: err} },
	})

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatalf("stream error: %v", out.err)
		}
		if !strings.Contains(out.final, "Ada") {
			t.Errorf("final answer %q should mention the entry point", out.final)
		}
		if !strings.Contains(out.final, "2 nodes") {
			t.Errorf("final answer %q should mention the node count", out.final)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the stream to finish")
	}

	if snap == nil {
		t.Fatal("metadata frame should carry the graph snapshot")
	}
	if len(snap.Nodes) != 2 {
		t.Errorf("metadata snapshot has %d nodes, want 2", len(snap.Nodes))
	}
	if chunks == 0 {
		t.Error("expected at least one chunk frame")
	}
}

func TestReplayAnswer(t *testing.T) {
	answer := replayAnswer("test question", replaySnapshot())

	if !strings.Contains(answer, "Ada") {
		t.Errorf("answer %q should name the entry point", answer)
	}
	if !strings.Contains(answer, `"test question"`) {
		t.Errorf("answer %q should echo the question", answer)
	}
}
