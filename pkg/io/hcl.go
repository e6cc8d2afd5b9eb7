package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// hclFile is decoded from the top level of an HCL graph file.
type hclFile struct {
	Inputs      []*hclExternal `hcl:"input,block"`
	Outputs     []*hclExternal `hcl:"output,block"`
	Nodes       []*hclNode     `hcl:"node,block"`
	Connections []*hclConnect  `hcl:"connect,block"`
}

type hclExternal struct {
	ID   string `hcl:"id,label"`
	Kind string `hcl:"kind,optional"`
	Type string `hcl:"type"`
	Name string `hcl:"name"`
}

type hclNode struct {
	ID      string            `hcl:"id,label"`
	Type    string            `hcl:"type"`
	Defines map[string]string `hcl:"defines,optional"`
}

type hclConnect struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// ReadHCL parses an HCL graph and builds the structure it describes. Blocks are
// added in file order: inputs, outputs and nodes first, then connections.
// filename is only used in diagnostics.
func ReadHCL(src []byte, filename string, reg nodetype.Registry) (*graph.Structure, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeParse, diags, "parse %s", filename)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeParse, diags, "decode %s", filename)
	}

	s := graph.NewStructure(reg)
	for _, in := range root.Inputs {
		kind, ok := graph.ParseIOKind(in.Kind)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "input %q: invalid kind %q", in.ID, in.Kind)
		}
		ext := graph.External{IOKind: kind, DataType: in.Type, Name: in.Name}
		if err := s.AddNode(graph.NewExternalInput(in.ID, ext)); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	for _, out := range root.Outputs {
		ext := graph.External{IOKind: graph.IOKind(out.Kind), DataType: out.Type, Name: out.Name}
		if err := s.AddNode(graph.NewExternalOutput(out.ID, ext)); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	for _, n := range root.Nodes {
		if err := s.AddNode(graph.NewFunctionNode(n.ID, n.Type, n.Defines)); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	for _, c := range root.Connections {
		conn, err := parseConnect(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if err := s.AddConnection(conn); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return s, nil
}

func parseConnect(c *hclConnect) (graph.Connection, error) {
	from, output, ok := strings.Cut(c.From, ".")
	if !ok {
		return graph.Connection{}, errors.New(errors.ErrCodeInvalidInput, "connect: from %q is not node.port", c.From)
	}
	if c.To == graph.NoTarget {
		return graph.Connection{From: from, Output: output, To: graph.NoTarget}, nil
	}
	to, input, ok := strings.Cut(c.To, ".")
	if !ok {
		return graph.Connection{}, errors.New(errors.ErrCodeInvalidInput, "connect: to %q is not node.port", c.To)
	}
	return graph.Connection{From: from, Output: output, To: to, Input: input}, nil
}

// WriteHCL renders the structure in the HCL graph format. Nodes are written in
// insertion order followed by all connections.
func WriteHCL(s *graph.Structure, w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range s.Nodes() {
		if i > 0 {
			body.AppendNewline()
		}
		switch n := n.(type) {
		case *graph.ExternalInputNode:
			writeExternal(body.AppendNewBlock("input", []string{n.ID()}).Body(), n.External())
		case *graph.ExternalOutputNode:
			writeExternal(body.AppendNewBlock("output", []string{n.ID()}).Body(), n.External())
		case *graph.FunctionNode:
			b := body.AppendNewBlock("node", []string{n.ID()}).Body()
			b.SetAttributeValue("type", cty.StringVal(n.TypeName()))
			if defines := n.Defines(); len(defines) > 0 {
				vals := make(map[string]cty.Value, len(defines))
				for k, v := range defines {
					vals[k] = cty.StringVal(v)
				}
				b.SetAttributeValue("defines", cty.MapVal(vals))
			}
		}
	}

	for _, c := range s.Connections() {
		body.AppendNewline()
		b := body.AppendNewBlock("connect", nil).Body()
		b.SetAttributeValue("from", cty.StringVal(c.From+"."+c.Output))
		to := graph.NoTarget
		if !c.Unused() {
			to = c.To + "." + c.Input
		}
		b.SetAttributeValue("to", cty.StringVal(to))
	}

	if _, err := w.Write(hclwrite.Format(f.Bytes())); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func writeExternal(b *hclwrite.Body, ext graph.External) {
	if ext.IOKind != "" {
		b.SetAttributeValue("kind", cty.StringVal(string(ext.IOKind)))
	}
	b.SetAttributeValue("type", cty.StringVal(ext.DataType))
	b.SetAttributeValue("name", cty.StringVal(ext.Name))
}
