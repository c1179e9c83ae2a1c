package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/stream"
)

// queryOpts holds the command-line flags for the query command.
type queryOpts struct {
	backend string // streaming endpoint override
	session string // backend session ID override
	output  string // snapshot output path
	plain   bool   // disable the interactive view
	seed    int64  // layout seed for the interactive canvas
}

// queryCommand creates the query command.
//
// By default the answer streams into an interactive view where collapsed
// hubs can be expanded and nodes inspected. With --plain the answer is
// printed as it arrives and the command exits when the stream ends.
func (c *CLI) queryCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Stream a question to the backend and explore the answer graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			if opts.backend == "" {
				opts.backend = cfg.Backend.URL
			}
			if opts.session == "" {
				opts.session = cfg.Backend.SessionID
			}
			if opts.seed == 0 {
				opts.seed = cfg.Layout.Seed
			}

			if opts.plain {
				return c.runPlainQuery(cmd.Context(), args[0], opts)
			}
			return c.runInteractiveQuery(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "streaming endpoint (default from config)")
	cmd.Flags().StringVar(&opts.session, "session", "", "backend session ID")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the answer snapshot to a file")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print the answer without the interactive view")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "layout seed for reproducible positions")

	return cmd
}

// runPlainQuery streams the answer to stdout.
func (c *CLI) runPlainQuery(ctx context.Context, question string, opts queryOpts) error {
	session := stream.NewSession(opts.backend, stream.WithLogger(c.Logger))

	type outcome struct {
		final string
		err   error
	}
	done := make(chan outcome, 1)
	var snap *graph.Snapshot

	spin := newSpinnerWithContext(ctx, "Waiting for the backend...")
	spin.Start()
	started := false

	session.Start(ctx, stream.Request{Question: question, SessionID: opts.session}, stream.Callbacks{
		OnMetadata: func(meta stream.Metadata) {
			if meta.Graph != nil {
				snap = meta.Graph
			}
		},
		OnChunk: func(fragment, _ string) {
			if !started {
				spin.Stop()
				started = true
			}
			fmt.Print(fragment)
		},
		OnDone:  func(final string) { done <- outcome{final: final} },
		OnError: func(err error) { done <- outcome{err: err} },
	})

	select {
	case <-ctx.Done():
		session.Abort()
		spin.Stop()
		return ctx.Err()
	case out := <-done:
		if !started {
			spin.Stop()
			// Nothing streamed incrementally; print the final answer whole.
			if out.final != "" {
				fmt.Print(out.final)
			}
		}
		printNewline()
		if out.err != nil {
			return out.err
		}
	}

	if snap != nil {
		normalized := snap.Normalize()
		printStats(len(normalized.Nodes), len(normalized.Edges), false)
		if opts.output != "" {
			if err := graph.WriteSnapshotFile(normalized, opts.output); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			printFile(opts.output)
			printNextStep("Render it", fmt.Sprintf("%s render %s", appName, opts.output))
		}
	} else {
		printDetail("The answer carried no graph snapshot")
	}
	return nil
}

// runInteractiveQuery streams the answer into the bubbletea view.
func (c *CLI) runInteractiveQuery(ctx context.Context, question string, opts queryOpts) error {
	session := stream.NewSession(opts.backend, stream.WithLogger(c.Logger))
	model := newQueryModel(question, opts.seed, opts.output)

	p := tea.NewProgram(model, tea.WithContext(ctx))

	session.Start(ctx, stream.Request{Question: question, SessionID: opts.session}, stream.Callbacks{
		OnMetadata: func(meta stream.Metadata) {
			if meta.Graph != nil {
				p.Send(metadataMsg{snapshot: *meta.Graph})
			}
		},
		OnChunk: func(_, accumulated string) {
			p.Send(chunkMsg{accumulated: accumulated})
		},
		OnDone:  func(final string) { p.Send(doneMsg{final: final}) },
		OnError: func(err error) { p.Send(streamErrMsg{err: err}) },
	})

	finalModel, err := p.Run()
	session.Abort()
	if err != nil {
		return err
	}

	m, ok := finalModel.(queryModel)
	if !ok {
		return nil
	}
	if m.streamErr != nil {
		return m.streamErr
	}
	if m.savedTo != "" {
		printSuccess("Snapshot saved")
		printFile(m.savedTo)
	}
	return nil
}

// wrapText hard-wraps s at width columns, preserving existing newlines.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		col := 0
		for _, word := range strings.Fields(line) {
			if col > 0 && col+1+len(word) > width {
				b.WriteByte('\n')
				col = 0
			} else if col > 0 {
				b.WriteByte(' ')
				col++
			}
			b.WriteString(word)
			col += len(word)
		}
	}
	return b.String()
}
