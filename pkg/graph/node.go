package graph

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the three node variants.
type Kind int

const (
	// KindFunction is a node instantiating a registered node type.
	KindFunction Kind = iota
	// KindExternalInput is a boundary node reading a uniform, attribute or varying.
	KindExternalInput
	// KindExternalOutput is a boundary node writing the result of the graph.
	KindExternalOutput
)

// Discriminators used by persisted records. Function nodes persist their type name.
const (
	TypeExternalInput  = "external-input"
	TypeExternalOutput = "external-output"
)

// String returns the discriminator used for the kind.
func (k Kind) String() string {
	switch k {
	case KindExternalInput:
		return TypeExternalInput
	case KindExternalOutput:
		return TypeExternalOutput
	default:
		return "function"
	}
}

// ExternalPort is the name of the single port of external nodes: the output of an
// external input and the input of an external output.
const ExternalPort = "value"

// NoTarget is the sentinel target id of a connection whose output is unused.
// Such connections are ignored by scheduling and code generation.
const NoTarget = "_"

// IOKind is the storage qualifier of an external.
type IOKind string

// Storage qualifiers supported for externals.
const (
	IOUniform   IOKind = "uniform"
	IOAttribute IOKind = "attribute"
	IOVarying   IOKind = "varying"
)

// ParseIOKind converts a directive name into an IOKind.
func ParseIOKind(s string) (IOKind, bool) {
	switch k := IOKind(s); k {
	case IOUniform, IOAttribute, IOVarying:
		return k, true
	}
	return "", false
}

// External describes a shading-stage input or output.
type External struct {
	IOKind   IOKind `json:"ioKind" bson:"ioKind"`
	DataType string `json:"dataType" bson:"dataType"`
	Name     string `json:"name" bson:"name"`
}

// Builtin reports whether the external names a built-in variable (gl_*) that must
// not be redeclared.
func (e External) Builtin() bool {
	return strings.HasPrefix(e.Name, "gl_")
}

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	From   string `json:"from"`
	Output string `json:"output"`
	To     string `json:"to"`
	Input  string `json:"input"`
}

// Unused reports whether the connection targets the NoTarget sentinel.
func (c Connection) Unused() bool { return c.To == NoTarget }

// String formats the connection as from.output -> to.input.
func (c Connection) String() string {
	return c.From + "." + c.Output + " -> " + c.To + "." + c.Input
}

// Resolution is the concrete type a generic variable is bound to on one node,
// together with the number of connections sustaining the binding.
type Resolution struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Node is a graph node. The set of implementations is closed:
// *FunctionNode, *ExternalInputNode and *ExternalOutputNode.
//
// Nodes are mutated only by the Structure that owns them. The accessors below
// return copies.
type Node interface {
	ID() string
	Kind() Kind
	// TypeName returns the persisted discriminator: the node type name for
	// function nodes, TypeExternalInput or TypeExternalOutput otherwise.
	TypeName() string
	// Outgoing returns the node's outgoing connections in insertion order.
	Outgoing() []Connection
	// Record returns the persisted form of the node.
	Record() Record

	sealed()
}

// FunctionNode instantiates a registered node type.
type FunctionNode struct {
	id       string
	typeName string
	defines  map[string]string
	resolved map[string]*Resolution
	occupied map[string]bool
	outgoing []Connection
}

// NewFunctionNode creates a function node of the given type.
// An empty id is replaced by a generated one.
func NewFunctionNode(id, typeName string, defines map[string]string) *FunctionNode {
	if id == "" {
		id = NewID()
	}
	d := make(map[string]string, len(defines))
	maps.Copy(d, defines)
	return &FunctionNode{
		id:       id,
		typeName: typeName,
		defines:  d,
		resolved: make(map[string]*Resolution),
		occupied: make(map[string]bool),
	}
}

func (n *FunctionNode) ID() string             { return n.id }
func (n *FunctionNode) Kind() Kind             { return KindFunction }
func (n *FunctionNode) TypeName() string       { return n.typeName }
func (n *FunctionNode) Outgoing() []Connection { return slices.Clone(n.outgoing) }
func (n *FunctionNode) sealed()                {}

// Defines returns a copy of the per-instance defines.
func (n *FunctionNode) Defines() map[string]string { return maps.Clone(n.defines) }

// Resolved returns the concrete type bound to the generic variable v.
func (n *FunctionNode) Resolved(v string) (Resolution, bool) {
	r, ok := n.resolved[v]
	if !ok {
		return Resolution{}, false
	}
	return *r, true
}

// ResolvedTypes returns a copy of all generic bindings.
func (n *FunctionNode) ResolvedTypes() map[string]Resolution {
	out := make(map[string]Resolution, len(n.resolved))
	for k, r := range n.resolved {
		out[k] = *r
	}
	return out
}

// Occupied reports whether the input port has an incoming connection.
func (n *FunctionNode) Occupied(input string) bool { return n.occupied[input] }

// ExternalInputNode feeds an external value into the graph.
type ExternalInputNode struct {
	id       string
	external External
	outgoing []Connection
}

// NewExternalInput creates an external input node.
// An empty id is replaced by a generated one.
func NewExternalInput(id string, ext External) *ExternalInputNode {
	if id == "" {
		id = NewID()
	}
	return &ExternalInputNode{id: id, external: ext}
}

func (n *ExternalInputNode) ID() string             { return n.id }
func (n *ExternalInputNode) Kind() Kind             { return KindExternalInput }
func (n *ExternalInputNode) TypeName() string       { return TypeExternalInput }
func (n *ExternalInputNode) Outgoing() []Connection { return slices.Clone(n.outgoing) }
func (n *ExternalInputNode) External() External     { return n.external }
func (n *ExternalInputNode) sealed()                {}

// ExternalOutputNode is a terminal sink writing to an external.
type ExternalOutputNode struct {
	id       string
	external External
	occupied bool
}

// NewExternalOutput creates an external output node.
// An empty id is replaced by a generated one.
func NewExternalOutput(id string, ext External) *ExternalOutputNode {
	if id == "" {
		id = NewID()
	}
	return &ExternalOutputNode{id: id, external: ext}
}

func (n *ExternalOutputNode) ID() string             { return n.id }
func (n *ExternalOutputNode) Kind() Kind             { return KindExternalOutput }
func (n *ExternalOutputNode) TypeName() string       { return TypeExternalOutput }
func (n *ExternalOutputNode) Outgoing() []Connection { return nil }
func (n *ExternalOutputNode) External() External     { return n.external }
func (n *ExternalOutputNode) Occupied() bool         { return n.occupied }
func (n *ExternalOutputNode) sealed()                {}

// NewID returns a fresh node id that is safe to embed in generated identifiers.
func NewID() string {
	return "n" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// outgoingOf returns the live outgoing slice of a node for internal traversal.
func outgoingOf(n Node) []Connection {
	switch n := n.(type) {
	case *FunctionNode:
		return n.outgoing
	case *ExternalInputNode:
		return n.outgoing
	case *ExternalOutputNode:
		return nil
	default:
		panic("graph: unknown node variant")
	}
}
