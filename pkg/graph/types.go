package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// Record is the persisted form of a node. A structure persists as a mapping from
// node id to record; see [Structure.ToRecords] and [FromRecords].
//
// Type is TypeExternalInput, TypeExternalOutput or the node type name of a
// function node. External is set only for external nodes.
type Record struct {
	ID        string            `json:"id" bson:"id"`
	Type      string            `json:"type" bson:"type"`
	External  *External         `json:"external,omitempty" bson:"external,omitempty"`
	Defines   map[string]string `json:"defines,omitempty" bson:"defines,omitempty"`
	OutputsTo []Outlet          `json:"outputsTo,omitempty" bson:"outputsTo,omitempty"`
}

// Outlet is a persisted outgoing connection; the source is the owning record.
type Outlet struct {
	Output string `json:"output" bson:"output"`
	To     string `json:"to" bson:"to"`
	Input  string `json:"input" bson:"input"`
}

// Record returns the persisted form of the node.
func (n *FunctionNode) Record() Record {
	r := Record{ID: n.id, Type: n.typeName, OutputsTo: outlets(n.outgoing)}
	if len(n.defines) > 0 {
		r.Defines = maps.Clone(n.defines)
	}
	return r
}

// Record returns the persisted form of the node.
func (n *ExternalInputNode) Record() Record {
	ext := n.external
	return Record{ID: n.id, Type: TypeExternalInput, External: &ext, OutputsTo: outlets(n.outgoing)}
}

// Record returns the persisted form of the node.
func (n *ExternalOutputNode) Record() Record {
	ext := n.external
	return Record{ID: n.id, Type: TypeExternalOutput, External: &ext}
}

func outlets(conns []Connection) []Outlet {
	if len(conns) == 0 {
		return nil
	}
	out := make([]Outlet, len(conns))
	for i, c := range conns {
		out[i] = Outlet{Output: c.Output, To: c.To, Input: c.Input}
	}
	return out
}

// NewNode creates an unconnected node from a record, dispatching on the
// record's type discriminator. Outlets are ignored; FromRecords replays them.
func NewNode(r Record) (Node, error) {
	switch r.Type {
	case "":
		return nil, errors.New(errors.ErrCodeInvalidFormat, "record %q has no type", r.ID)
	case TypeExternalInput:
		if r.External == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "external input %q has no external", r.ID)
		}
		return NewExternalInput(r.ID, *r.External), nil
	case TypeExternalOutput:
		if r.External == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "external output %q has no external", r.ID)
		}
		return NewExternalOutput(r.ID, *r.External), nil
	default:
		return NewFunctionNode(r.ID, r.Type, r.Defines), nil
	}
}

// ToRecords returns the persisted form of every node, keyed by id.
func (s *Structure) ToRecords() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record, len(s.nodes))
	for id, n := range s.nodes {
		out[id] = n.Record()
	}
	return out
}

// FromRecords rebuilds a structure from persisted records.
//
// Nodes are added in id order, then every outlet is replayed through
// AddConnection, so the rebuilt structure re-derives its occupancy and generic
// bindings and rejects records describing an invalid graph.
func FromRecords(reg nodetype.Registry, records map[string]Record) (*Structure, error) {
	s := NewStructure(reg)
	ids := slices.Sorted(maps.Keys(records))

	for _, id := range ids {
		r := records[id]
		if r.ID == "" {
			r.ID = id
		}
		if r.ID != id {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record keyed %q has id %q", id, r.ID)
		}
		n, err := NewNode(r)
		if err != nil {
			return nil, err
		}
		if err := s.AddNode(n); err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		for _, o := range records[id].OutputsTo {
			c := Connection{From: id, Output: o.Output, To: o.To, Input: o.Input}
			if err := s.AddConnection(c); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
