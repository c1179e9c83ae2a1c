package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/store"
	"github.com/graphlens/graphlens/pkg/stream"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	delay   time.Duration // pause between chunk frames
	archive bool          // archive served snapshots to MongoDB
}

// serveCommand creates the serve command: a local streaming backend
// that replays a snapshot file. Useful for developing against the
// query command without a real backend, and for demos.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <snapshot-file>",
		Short: "Replay a snapshot file as a local streaming backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := graph.ReadSnapshotFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			snap = snap.Normalize()

			var archive *store.Archive
			if opts.archive {
				cfg, err := c.Config()
				if err != nil {
					return err
				}
				archive, err = store.NewArchive(cmd.Context(), cfg.Archive.URI, cfg.Archive.Database, cfg.Archive.Collection)
				if err != nil {
					return err
				}
				defer archive.Close(cmd.Context())
			}

			srv := &http.Server{
				Addr:    opts.addr,
				Handler: c.serveRouter(snap, opts.delay, archive),
			}

			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			printInfo("Serving %d nodes on %s", len(snap.Nodes), opts.addr)
			printNextStep("Query it", fmt.Sprintf("%s query --backend http://localhost%s/api/query/stream \"...\"", appName, opts.addr))

			err = srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&opts.delay, "delay", 40*time.Millisecond, "pause between chunk frames")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "archive served snapshots to MongoDB")

	return cmd
}

// serveRouter wires the replay endpoints.
func (c *CLI) serveRouter(snap graph.Snapshot, delay time.Duration, archive *store.Archive) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/query/stream", c.replayHandler(snap, delay, archive))
	r.Get("/api/snapshot", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = graph.WriteSnapshot(snap, w)
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// replayHandler streams the snapshot back in the query wire format:
// one metadata frame carrying the graph, the answer text in word-sized
// chunk frames, then a done frame.
func (c *CLI) replayHandler(snap graph.Snapshot, delay time.Duration, archive *store.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var q stream.Request
		if err := json.NewDecoder(req.Body).Decode(&q); err != nil || q.Question == "" {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")

		sse := sseWriter{w: w, flusher: flusher}

		meta, _ := json.Marshal(stream.Metadata{Graph: &snap})
		sse.writeFrame(stream.FrameMetadata, string(meta))

		answer := replayAnswer(q.Question, snap)
		for _, word := range strings.SplitAfter(answer, " ") {
			select {
			case <-req.Context().Done():
				return
			case <-time.After(delay):
			}
			sse.writeFrame(stream.FrameChunk, word)
		}

		done, _ := json.Marshal(map[string]any{
			"success":       true,
			"full_response": answer,
		})
		sse.writeFrame(stream.FrameDone, string(done))

		if archive != nil {
			if id, err := archive.Save(req.Context(), q.Question, snap); err != nil {
				c.Logger.Warn("archive failed", "err", err)
			} else {
				c.Logger.Debug("archived snapshot", "id", id)
			}
		}
	}
}

// sseWriter writes text/event-stream frames, flushing after each one.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s sseWriter) writeFrame(event, data string) {
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

// replayAnswer fabricates a short answer about the snapshot.
func replayAnswer(question string, snap graph.Snapshot) string {
	entries := snap.EntryPoints()
	names := make([]string, 0, min(len(entries), 3))
	for _, id := range entries[:min(len(entries), 3)] {
		if n, ok := snap.Node(id); ok {
			names = append(names, n.DisplayName())
		}
	}
	subject := "the graph"
	if len(names) > 0 {
		subject = strings.Join(names, ", ")
	}
	return fmt.Sprintf("Replaying a stored answer about %s: the snapshot holds %d nodes and %d edges relevant to %q.",
		subject, len(snap.Nodes), len(snap.Edges), question)
}
