// Package render provides visualization of shader graphs.
//
// The rendering code lives in subpackages:
//
//   - [nodelink]: Graphviz node-link diagrams with one record per node and
//     port-to-port edges, exported as DOT, SVG or PNG.
//
// [nodelink]: github.com/matzehuels/shadergraph/pkg/render/nodelink
package render
