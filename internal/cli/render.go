package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output base path (extension added per format)
	formats   []string
	seed      int64
	expandAll bool // expand every collapsed hub before layout
	detailed  bool // include depth and properties in labels
	noCache   bool
	refresh   bool
}

// renderCommand creates the render command for generating artifacts
// from a snapshot file.
//
// Default settings:
//   - formats: svg
//   - seed: 42 (stable output across runs)
//   - hubs stay collapsed; use --expand-all for the full graph
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "render <snapshot-file>",
		Short: "Render a snapshot file to SVG, PNG, DOT, or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)

			snap, err := graph.ReadSnapshotFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			if opts.seed == 0 {
				if cfg, err := c.Config(); err == nil {
					opts.seed = cfg.Layout.Seed
				}
			}

			runner, err := c.newRunner(cmd.Context(), opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			result, err := runner.Execute(cmd.Context(), snap, pipeline.Options{
				ExpandAll: opts.expandAll,
				Seed:      opts.seed,
				Formats:   opts.formats,
				Detailed:  opts.detailed,
				Refresh:   opts.refresh,
				Logger:    c.Logger,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d nodes", result.Stats.NodeCount))

			base := opts.output
			if base == "" {
				base = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}

			printSuccess("Rendered %s", filepath.Base(args[0]))
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
			if result.Stats.HiddenCount > 0 {
				printDetail("%d nodes collapsed behind %d hubs (use --expand-all to show them)",
					result.Stats.HiddenCount, len(result.Disclosed.Groups))
			}

			for _, format := range opts.formats {
				path := base + "." + format
				if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: snapshot name)")
	cmd.Flags().StringVarP(&formatsStr, "formats", "f", "svg", "comma-separated output formats (svg,png,dot,json)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "layout seed (default 42 for stable output)")
	cmd.Flags().BoolVar(&opts.expandAll, "expand-all", false, "expand every collapsed hub")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include depth and properties in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}
