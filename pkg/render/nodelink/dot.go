package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/graphlens/graphlens/pkg/canvas"
	"github.com/graphlens/graphlens/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes depth and node properties in labels.
	// When false, only the display name is shown.
	Detailed bool
}

// Canvas positions are in an abstract unit; Graphviz pos attributes
// are in points. One point per four units keeps diagrams near page
// scale.
const posScale = 0.25

// ToDOT converts a canvas's visible state to Graphviz DOT with pinned
// node positions. The result renders with the neato engine, which
// honors `pos="x,y!"`; see [RenderSVG] and [RenderPNG].
//
// Collapsed hubs are labeled with a "+N" hidden-neighbor badge and the
// selected node, if any, gets a thicker outline.
func ToDOT(nodes []canvas.VisibleNode, edges []canvas.VisibleEdge, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#8a8f98\", fontsize=10, fontcolor=\"#8a8f98\"];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n canvas.VisibleNode, detailed bool) string {
	label := n.DisplayName()
	if n.HiddenCount > 0 {
		label += fmt.Sprintf(" (+%d)", n.HiddenCount)
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("depth: %d", n.Depth)}
	for _, k := range slices.Sorted(maps.Keys(n.Properties)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Properties[k].Display()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n canvas.VisibleNode, label string) []string {
	// Graphviz's y axis grows upward; the canvas's grows downward.
	pos := fmt.Sprintf("%.2f,%.2f!", n.Position.X*posScale, -n.Position.Y*posScale)

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=%q", pos),
		fmt.Sprintf("fillcolor=%q", fillColor(n.Node)),
		"fontcolor=white",
	}
	if n.IsSelected {
		attrs = append(attrs, "penwidth=3", "color=\"#1c2430\"")
	}
	return attrs
}

func fillColor(n graph.Node) string {
	if n.Style.Color != "" {
		return n.Style.Color
	}
	return graph.StyleForRole(n.Role).Color
}

// RenderSVG renders pinned-position DOT to SVG using Graphviz's neato
// engine.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders pinned-position DOT to PNG in-process.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root so the viewBox starts at the
// origin and width/height match it, which makes the output embed
// cleanly in HTML without Graphviz's default padding offsets.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
