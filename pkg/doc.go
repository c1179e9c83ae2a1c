// Package pkg provides the core libraries for GraphLens graph exploration.
//
// # Overview
//
// GraphLens turns streamed query answers into explorable graph views.
// A backend answers a natural-language question over a knowledge graph
// and streams back partial text plus a graph snapshot; GraphLens
// consumes that stream, decides which part of the graph is worth
// showing, positions it, and renders or displays it.
//
// # Architecture
//
// The typical data flow:
//
//	Streaming backend (SSE)
//	         ↓
//	    [stream] package (framed event decoding, one exchange at a time)
//	         ↓
//	    [graph] package (snapshot model + normalization)
//	         ↓
//	    [disclosure] package (hub collapsing, progressive reveal)
//	         ↓
//	    [layout] package (force simulation)
//	         ↓
//	    [canvas] / [render/nodelink] (interactive view or SVG/PNG/DOT output)
//
// # Quick Start
//
// Render a snapshot file to SVG through the pipeline:
//
//	snap, _ := graph.ReadSnapshotFile("answer.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, snap, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	os.WriteFile("answer.svg", result.Artifacts["svg"], 0644)
//
// Or drive an interactive canvas from a live stream:
//
//	c := canvas.New()
//	session := stream.NewSession(cfg.Backend.URL)
//	session.Start(ctx, stream.Request{Question: q}, stream.Callbacks{
//	    OnMetadata: func(m stream.Metadata) {
//	        if m.Graph != nil {
//	            c.ApplySnapshot(*m.Graph)
//	        }
//	    },
//	})
//
// # Main Packages
//
// [graph] - Snapshot model: typed nodes, edges, property values, roles
// derived from traversal depth, and normalization (duplicate IDs,
// dangling edges).
//
// [stream] - Client for the backend's framed text/event-stream
// protocol. One cancellable exchange at a time; stale exchanges never
// fire callbacks.
//
// [disclosure] - Progressive disclosure: high-degree hubs collapse
// their neighbors behind "+N" groups, expanded on demand,
// deterministically.
//
// [layout] - Force-directed placement with size-scaled parameters and
// anchored entry points.
//
// [canvas] - Rendered view state: visible nodes with positions,
// selection, and relayout-free mutations.
//
// [pipeline] - Batch orchestration (disclose → layout → render) with
// per-stage caching, shared by the CLI and the serve command.
//
// [render/nodelink] - Positioned DOT/SVG/PNG export via Graphviz.
//
// [cache] - File, Redis, and null cache backends plus stage keyers.
//
// [store] - MongoDB snapshot archive for the serve deployment.
//
// [config] - TOML user configuration.
//
// [errors], [httputil], [observability], [buildinfo] - Ambient
// infrastructure shared by everything above.
//
// [graph]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/graph
// [stream]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/stream
// [disclosure]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/disclosure
// [layout]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/layout
// [canvas]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/canvas
// [pipeline]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/cache
// [store]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/store
// [config]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/config
// [errors]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/graphlens/graphlens/pkg/buildinfo
package pkg
