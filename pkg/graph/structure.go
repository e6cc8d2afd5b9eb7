package graph

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// Structure owns the nodes of one shader graph and keeps it consistent.
//
// Every public method takes the structure's lock for its whole duration, so a
// connection is validated and applied atomically with respect to other callers.
// The registry is shared and never mutated.
type Structure struct {
	mu       sync.Mutex
	nodes    map[string]Node
	order    []string // insertion order, for deterministic iteration
	registry nodetype.Registry
	logger   *log.Logger
}

// NewStructure creates an empty structure resolving node types through reg.
func NewStructure(reg nodetype.Registry) *Structure {
	return &Structure{
		nodes:    make(map[string]Node),
		registry: reg,
		logger:   log.New(io.Discard),
	}
}

// SetLogger sets the logger used for debug traces of graph mutations.
func (s *Structure) SetLogger(l *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = log.New(io.Discard)
	}
	s.logger = l
}

// Registry returns the node type registry the structure was created with.
func (s *Structure) Registry() nodetype.Registry { return s.registry }

// AddNode adds a freshly created node.
//
// Returns INVALID_INPUT for unsafe ids (including the NoTarget sentinel) or
// malformed externals, DUPLICATE_NODE if
// the id is taken and UNKNOWN_NODE_TYPE if a function node's type is not
// registered. Nodes that already carry connections are rejected: connections are
// only created through AddConnection.
func (s *Structure) AddNode(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := errors.ValidateNodeID(n.ID()); err != nil {
		return err
	}
	if n.ID() == NoTarget {
		return errors.New(errors.ErrCodeInvalidInput, "node id %q is reserved for unused outputs", NoTarget)
	}
	if _, exists := s.nodes[n.ID()]; exists {
		return errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", n.ID())
	}

	switch n := n.(type) {
	case *FunctionNode:
		if _, err := s.definition(n); err != nil {
			return err
		}
		if len(n.outgoing) > 0 || len(n.occupied) > 0 || len(n.resolved) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q already has connections", n.id)
		}
	case *ExternalInputNode:
		if _, ok := ParseIOKind(string(n.external.IOKind)); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "external input %q has invalid io kind %q", n.id, n.external.IOKind)
		}
		if err := validateExternal(n.external); err != nil {
			return err
		}
		if len(n.outgoing) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q already has connections", n.id)
		}
	case *ExternalOutputNode:
		if n.external.IOKind != "" {
			if _, ok := ParseIOKind(string(n.external.IOKind)); !ok {
				return errors.New(errors.ErrCodeInvalidInput, "external output %q has invalid io kind %q", n.id, n.external.IOKind)
			}
		}
		if err := validateExternal(n.external); err != nil {
			return err
		}
		if n.occupied {
			return errors.New(errors.ErrCodeInvalidInput, "node %q already has connections", n.id)
		}
	}

	s.nodes[n.ID()] = n
	s.order = append(s.order, n.ID())
	s.logger.Debug("added node", "id", n.ID(), "type", n.TypeName())
	return nil
}

func validateExternal(e External) error {
	if err := errors.ValidateIdentifier("external data type", e.DataType); err != nil {
		return err
	}
	return errors.ValidateIdentifier("external name", e.Name)
}

// RemoveNode removes a node and every connection that starts or ends at it.
// Types resolved through those connections are unresolved first.
func (s *Structure) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown node %q", id)
	}

	var severed []Connection
	for _, other := range s.order {
		for _, c := range outgoingOf(s.nodes[other]) {
			if c.To == id {
				severed = append(severed, c)
			}
		}
	}
	severed = append(severed, outgoingOf(n)...)
	for _, c := range severed {
		if err := s.removeConnection(c); err != nil {
			return err
		}
	}

	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.logger.Debug("removed node", "id", id, "severed", len(severed))
	return nil
}

// Node returns the node with the given id.
func (s *Structure) Node(id string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (s *Structure) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Node, len(s.order))
	for i, id := range s.order {
		out[i] = s.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (s *Structure) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Connections returns every connection, grouped by source node in insertion order.
func (s *Structure) Connections() []Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Connection
	for _, id := range s.order {
		out = append(out, outgoingOf(s.nodes[id])...)
	}
	return out
}

// AcceptsConnection reports whether c could be added, and why not.
// It does not modify the structure and does not check types; AddConnection does.
func (s *Structure) AcceptsConnection(c Connection) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(c); err != nil {
		return false, errors.UserMessage(err)
	}
	return true, ""
}

// AddConnection validates and adds c.
//
// Returns PORT_OCCUPIED or CYCLE_DETECTED when AcceptsConnection would refuse,
// UNKNOWN_NODE/UNKNOWN_PORT for dangling endpoints and TYPE_MISMATCH when the
// concrete types carried by c conflict with the graph. On error the structure
// is left exactly as it was.
func (s *Structure) AddConnection(c Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(c); err != nil {
		s.logger.Debug("rejected connection", "edge", c, "err", err)
		return err
	}

	src := s.nodes[c.From]
	if c.Unused() {
		s.setOutgoing(src, append(outgoingOf(src), c))
		return nil
	}

	p, err := s.planReflow(c)
	if err != nil {
		s.logger.Debug("rejected connection", "edge", c, "err", err)
		return err
	}
	p.apply(s)

	switch t := s.nodes[c.To].(type) {
	case *FunctionNode:
		t.occupied[c.Input] = true
	case *ExternalOutputNode:
		t.occupied = true
	}
	s.setOutgoing(src, append(outgoingOf(src), c))

	s.logger.Debug("connected", "edge", c, "bindings", len(p.order))
	return nil
}

// RemoveConnection removes c, unresolving the generic types it sustained and
// freeing the target port. Returns NOT_CONNECTED if c does not exist.
func (s *Structure) RemoveConnection(c Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeConnection(c)
}

func (s *Structure) removeConnection(c Connection) error {
	src, ok := s.nodes[c.From]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown source node %q", c.From)
	}
	out := outgoingOf(src)
	idx := slices.Index(out, c)
	if idx < 0 {
		return errors.New(errors.ErrCodeNotConnected, "no connection %s", c)
	}

	if !c.Unused() {
		s.unflow(c)
		switch t := s.nodes[c.To].(type) {
		case *FunctionNode:
			delete(t.occupied, c.Input)
		case *ExternalOutputNode:
			t.occupied = false
		}
	}
	s.setOutgoing(src, slices.Delete(slices.Clone(out), idx, idx+1))

	s.logger.Debug("disconnected", "edge", c)
	return nil
}

func (s *Structure) setOutgoing(n Node, out []Connection) {
	switch n := n.(type) {
	case *FunctionNode:
		n.outgoing = out
	case *ExternalInputNode:
		n.outgoing = out
	case *ExternalOutputNode:
		panic("graph: external output nodes have no outgoing connections")
	}
}

// check validates endpoints, port occupancy and acyclicity of c.
func (s *Structure) check(c Connection) error {
	src, ok := s.nodes[c.From]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown source node %q", c.From)
	}

	switch src := src.(type) {
	case *FunctionNode:
		def, err := s.definition(src)
		if err != nil {
			return err
		}
		if _, ok := def.Output(c.Output); !ok {
			return errors.New(errors.ErrCodeUnknownPort, "node %q (%s) has no output %q", src.id, src.typeName, c.Output)
		}
	case *ExternalInputNode:
		if c.Output != ExternalPort {
			return errors.New(errors.ErrCodeUnknownPort, "external input %q has no output %q", src.id, c.Output)
		}
	case *ExternalOutputNode:
		return errors.New(errors.ErrCodeUnknownPort, "external output %q has no outputs", src.id)
	}

	if c.Unused() {
		if slices.Contains(outgoingOf(src), c) {
			return errors.New(errors.ErrCodeInvalidInput, "output %q of node %q is already marked unused", c.Output, c.From)
		}
		return nil
	}

	tgt, ok := s.nodes[c.To]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown target node %q", c.To)
	}

	switch tgt := tgt.(type) {
	case *FunctionNode:
		def, err := s.definition(tgt)
		if err != nil {
			return err
		}
		if _, ok := def.Input(c.Input); !ok {
			return errors.New(errors.ErrCodeUnknownPort, "node %q (%s) has no input %q", tgt.id, tgt.typeName, c.Input)
		}
		if tgt.occupied[c.Input] {
			return errors.New(errors.ErrCodePortOccupied, "port occupied: input %q of node %q already has a connection", c.Input, tgt.id)
		}
	case *ExternalOutputNode:
		if c.Input != ExternalPort {
			return errors.New(errors.ErrCodeUnknownPort, "external output %q has no input %q", tgt.id, c.Input)
		}
		if tgt.occupied {
			return errors.New(errors.ErrCodePortOccupied, "port occupied: external output %q already has a connection", tgt.id)
		}
	case *ExternalInputNode:
		return errors.New(errors.ErrCodeUnknownPort, "external input %q has no inputs", tgt.id)
	}

	if s.returnsTo(c) {
		return errors.New(errors.ErrCodeCycleDetected, "would create a cycle: %s", c)
	}
	return nil
}

// returnsTo reports whether the source of c is reachable from its target, i.e.
// whether adding c would close a cycle.
func (s *Structure) returnsTo(c Connection) bool {
	visited := make(map[string]bool)
	stack := []string{c.To}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == c.From {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		for _, out := range outgoingOf(n) {
			if !out.Unused() {
				stack = append(stack, out.To)
			}
		}
	}
	return false
}

func (s *Structure) definition(n *FunctionNode) (*nodetype.Definition, error) {
	def, ok := s.registry.Lookup(n.typeName)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownNodeType, "unknown node type %q (node %q)", n.typeName, n.id)
	}
	return def, nil
}
