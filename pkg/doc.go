// Package pkg provides the core libraries for Shadergraph, a compiler from node
// graphs to shader source.
//
// # Overview
//
// A shader is described as a graph of typed function nodes. Each node type is
// declared in a small text format (ports, defines and a body template); node
// instances are wired output-to-input, and generic port types are resolved
// along the connections. The pkg directory is organized into four areas:
//
//  1. Declarations - [decl], [nodetype] and [registry]
//  2. Graph core - [graph] (structure manager) and [codegen] (scheduler and
//     code generator)
//  3. Infrastructure - [io], [cache], [store], [observability] and [errors]
//  4. Orchestration - [pipeline] and [render/nodelink]
//
// # Architecture
//
// The typical data flow through Shadergraph:
//
//	.node declaration files
//	         ↓
//	    [registry] package (parse declarations into a type registry)
//	         ↓
//	    [io] package (import a .json or .hcl graph into a [graph.Structure])
//	         ↓
//	    [codegen] package (schedule nodes, expand bodies, emit source)
//	         ↓
//	    shader source (and DOT/SVG/PNG diagrams via [render/nodelink])
//
// # Quick Start
//
// Build a shader from the builtin node library:
//
//	import (
//	    "github.com/matzehuels/shadergraph/pkg/codegen"
//	    "github.com/matzehuels/shadergraph/pkg/graph"
//	    "github.com/matzehuels/shadergraph/pkg/registry"
//	)
//
//	reg := registry.Builtin()
//	s := graph.NewStructure(reg)
//
//	// 1. Add nodes
//	s.AddNode(graph.NewExternalInput("in", graph.External{
//	    IOKind: graph.IOUniform, DataType: "float", Name: "intensity",
//	}))
//	s.AddNode(graph.NewFunctionNode("s", "scale", map[string]string{"FACTOR": "3"}))
//
//	// 2. Connect them; the generic type T of "s" resolves to float
//	s.AddConnection(graph.Connection{From: "in", Output: "value", To: "s", Input: "x"})
//
//	// 3. Generate source
//	src, _ := codegen.BuildShader(reg, s.Nodes())
//
// # Main Packages
//
// ## Declarations
//
// [decl] - Parser and printer for the declaration text format. Lenient parsing
// skips malformed lines; strict parsing reports them as PARSE_ERROR.
//
// [nodetype] - Node type definitions and the read-only [nodetype.Registry]
// interface.
//
// [registry] - Loads registries from directories of .node files and embeds a
// small builtin library.
//
// ## Graph Core
//
// [graph] - The structure manager. Every mutation keeps the graph acyclic,
// keeps each input fed by at most one connection and keeps generic type
// bindings consistent (reflow on connect, unflow on disconnect).
//
// [codegen] - Depth-first scheduling and template-based code generation.
//
// ## Infrastructure
//
// [io] - JSON record and HCL graph file formats.
//
// [cache] - Content-addressed build cache with file, redis and null backends.
//
// [store] - Named graph documents in files or MongoDB.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors matched with [errors.Is].
//
// ## Orchestration
//
// [pipeline] - Load, build and render with caching, used by the CLI and the
// HTTP service.
//
// [render/nodelink] - Graphviz node-link diagrams of graphs.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/graph/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include redis and mongo tests
//
// [decl]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/decl
// [nodetype]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/nodetype
// [registry]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/registry
// [graph]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/graph
// [codegen]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/codegen
// [io]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/render/nodelink
// [graph.Structure]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/graph#Structure
// [nodetype.Registry]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/nodetype#Registry
// [errors.Is]: https://pkg.go.dev/github.com/matzehuels/shadergraph/pkg/errors#Is
package pkg
