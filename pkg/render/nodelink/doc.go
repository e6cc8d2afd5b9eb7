// Package nodelink renders shader graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz. Every
// node is drawn as a record with its input ports on the left, its id and type
// in the middle and its output ports on the right. Connections run from the
// output port of one node to the input port of another, so the picture reads
// left to right in the same order the generated code evaluates it.
//
// # Usage
//
// Convert the nodes of a structure to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(s.Nodes(), reg, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, ports show their data type (resolved for generic
//     ports) and node titles list resolved type variables and defines.
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG] or [RenderPNG]
//   - Saved and processed with external Graphviz tools
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
