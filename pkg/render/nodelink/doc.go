// Package nodelink exports a positioned graph view as a node-link
// diagram.
//
// # Overview
//
// The canvas already owns node positions, so rendering pins every node
// at its computed coordinates instead of asking Graphviz to lay the
// graph out again. The generated DOT uses `pos="x,y!"` attributes and
// is rendered with the neato engine, which honors pinned positions.
//
// # Usage
//
// Convert the canvas's visible state to DOT, then render:
//
//	dot := nodelink.ToDOT(c.Nodes(), c.Edges(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For raster output use [RenderPNG], which renders in-process via
// Graphviz's own PNG backend.
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include depth and all properties.
//
// Collapsed hubs carry a "+N" suffix showing how many neighbors are
// hidden behind them, and the selected node gets a thicker outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// and PNG rendering; no external Graphviz installation is needed.
package nodelink
