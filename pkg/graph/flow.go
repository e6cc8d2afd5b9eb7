package graph

import (
	"github.com/matzehuels/shadergraph/pkg/errors"
)

// binding identifies one generic type variable on one node.
type binding struct {
	node     string
	variable string
}

// plan is the set of bindings a new connection would create or reinforce.
// It overlays the live resolutions so a failed reflow leaves no trace.
type plan struct {
	set   map[binding]Resolution
	order []binding
}

func newPlan() *plan {
	return &plan{set: make(map[binding]Resolution)}
}

func (p *plan) lookup(n *FunctionNode, v string) (Resolution, bool) {
	if p != nil {
		if r, ok := p.set[binding{n.id, v}]; ok {
			return r, true
		}
	}
	r, ok := n.resolved[v]
	if !ok {
		return Resolution{}, false
	}
	return *r, true
}

func (p *plan) put(n *FunctionNode, v string, r Resolution) {
	b := binding{n.id, v}
	if _, ok := p.set[b]; !ok {
		p.order = append(p.order, b)
	}
	p.set[b] = r
}

func (p *plan) apply(s *Structure) {
	for _, b := range p.order {
		r := p.set[b]
		n := s.nodes[b.node].(*FunctionNode)
		n.resolved[b.variable] = &Resolution{Type: r.Type, Count: r.Count}
	}
}

// outputType returns the concrete type currently produced by an output port.
// The second result is false while the port is generic and unbound.
func (s *Structure) outputType(n Node, port string, p *plan) (string, bool, error) {
	switch n := n.(type) {
	case *ExternalInputNode:
		return n.external.DataType, true, nil
	case *FunctionNode:
		def, err := s.definition(n)
		if err != nil {
			return "", false, err
		}
		out, ok := def.Output(port)
		if !ok {
			return "", false, errors.New(errors.ErrCodeUnknownPort, "node %q (%s) has no output %q", n.id, n.typeName, port)
		}
		if !out.Generic {
			return out.Type, true, nil
		}
		r, ok := p.lookup(n, out.Type)
		return r.Type, ok, nil
	default:
		return "", false, errors.New(errors.ErrCodeUnknownPort, "node %q has no output %q", n.ID(), port)
	}
}

// planReflow computes the bindings that adding c creates, pushing concrete types
// downstream through generic ports. A variable propagates further only when it
// is newly bound; re-confirming an existing binding just counts the extra
// connection. Returns a TYPE_MISMATCH error on the first conflict found.
func (s *Structure) planReflow(c Connection) (*plan, error) {
	p := newPlan()
	stack := []Connection{c}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.Unused() {
			continue
		}

		typ, ok, err := s.outputType(s.nodes[e.From], e.Output, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		switch t := s.nodes[e.To].(type) {
		case *ExternalOutputNode:
			if t.external.DataType != typ {
				return nil, errors.TypeMismatch(&errors.TypeMismatchError{
					Node: t.id, Port: e.Input, Expected: t.external.DataType, Actual: typ,
				})
			}
		case *FunctionNode:
			def, err := s.definition(t)
			if err != nil {
				return nil, err
			}
			in, ok := def.Input(e.Input)
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownPort, "node %q (%s) has no input %q", t.id, t.typeName, e.Input)
			}
			if !in.Generic {
				if in.Type != typ {
					return nil, errors.TypeMismatch(&errors.TypeMismatchError{
						Node: t.id, Port: e.Input, Expected: in.Type, Actual: typ,
					})
				}
				continue
			}
			cur, bound := p.lookup(t, in.Type)
			if bound {
				if cur.Type != typ {
					return nil, errors.TypeMismatch(&errors.TypeMismatchError{
						Node: t.id, Port: e.Input, Variable: in.Type, Expected: cur.Type, Actual: typ,
					})
				}
				cur.Count++
				p.put(t, in.Type, cur)
				continue
			}
			p.put(t, in.Type, Resolution{Type: typ, Count: 1})
			for _, o := range t.outgoing {
				if port, ok := def.Output(o.Output); ok && port.Generic && port.Type == in.Type {
					stack = append(stack, o)
				}
			}
		case nil:
			// Dangling target, nothing to propagate into.
		default:
			return nil, errors.New(errors.ErrCodeUnknownPort, "node %q has no input %q", e.To, e.Input)
		}
	}
	return p, nil
}

// unflow undoes the bindings sustained by c. A variable whose count drops to
// zero becomes unbound, and the connections that carried it downstream are
// unflowed in turn.
func (s *Structure) unflow(c Connection) {
	if _, ok, _ := s.outputType(s.nodes[c.From], c.Output, nil); !ok {
		// c carried no concrete type, so it sustains no binding.
		return
	}

	stack := []Connection{c}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.Unused() {
			continue
		}
		t, ok := s.nodes[e.To].(*FunctionNode)
		if !ok {
			continue
		}
		def, err := s.definition(t)
		if err != nil {
			continue
		}
		in, ok := def.Input(e.Input)
		if !ok || !in.Generic {
			continue
		}
		r := t.resolved[in.Type]
		if r == nil {
			continue
		}
		r.Count--
		if r.Count > 0 {
			continue
		}
		delete(t.resolved, in.Type)
		for _, o := range t.outgoing {
			if port, ok := def.Output(o.Output); ok && port.Generic && port.Type == in.Type {
				stack = append(stack, o)
			}
		}
	}
}
