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

	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the data type to every port and lists resolved generic
	// types and per-instance defines under the node title.
	Detailed bool
}

// ToDOT converts the nodes of a shader graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Each node is a record with its input ports on the left and its output ports
// on the right, and every connection is drawn port to port. Unused outputs
// (connections to [graph.NoTarget]) are not drawn. Nodes whose type is missing
// from reg are drawn without ports.
func ToDOT(nodes []graph.Node, reg nodetype.Registry, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID()] = true
	}

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID(), strings.Join(fmtAttrs(n, reg, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Outgoing() {
			if c.Unused() || !present[c.To] {
				continue
			}
			fmt.Fprintf(&buf, "  %q:%q:e -> %q:%q:w;\n", c.From, c.Output, c.To, c.Input)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node, reg nodetype.Registry, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, reg, detailed))}
	switch n.(type) {
	case *graph.ExternalInputNode:
		attrs = append(attrs, "fillcolor=\"#e8f1fb\"")
	case *graph.ExternalOutputNode:
		attrs = append(attrs, "fillcolor=\"#eaf7ea\"")
	}
	return attrs
}

// fmtLabel builds a record label of the form {{inputs}|title|{outputs}}.
func fmtLabel(n graph.Node, reg nodetype.Registry, detailed bool) string {
	switch n := n.(type) {
	case *graph.ExternalInputNode:
		return record(nil, externalTitle(n.ID(), n.External()), []string{port(graph.ExternalPort, n.External().DataType, detailed)})
	case *graph.ExternalOutputNode:
		return record([]string{port(graph.ExternalPort, n.External().DataType, detailed)}, externalTitle(n.ID(), n.External()), nil)
	case *graph.FunctionNode:
		def, ok := reg.Lookup(n.TypeName())
		if !ok {
			return record(nil, n.ID() + "\n" + n.TypeName() + "\n(unknown type)", nil)
		}
		return record(functionPorts(n, def.Inputs, detailed), functionTitle(n, detailed), functionPorts(n, def.Outputs, detailed))
	}
	return n.ID()
}

func functionTitle(n *graph.FunctionNode, detailed bool) string {
	title := n.ID() + "\n" + n.TypeName()
	if !detailed {
		return title
	}
	resolved := n.ResolvedTypes()
	for _, v := range slices.Sorted(maps.Keys(resolved)) {
		title += fmt.Sprintf("\n%s = %s", v, resolved[v].Type)
	}
	defines := n.Defines()
	for _, k := range slices.Sorted(maps.Keys(defines)) {
		title += fmt.Sprintf("\n#%s %s", k, defines[k])
	}
	return title
}

func functionPorts(n *graph.FunctionNode, ports []nodetype.Port, detailed bool) []string {
	fields := make([]string, len(ports))
	for i, p := range ports {
		typ := p.Type
		if p.Generic {
			if r, ok := n.Resolved(p.Type); ok {
				typ = r.Type
			}
		}
		fields[i] = port(p.Name, typ, detailed)
	}
	return fields
}

func externalTitle(id string, ext graph.External) string {
	if ext.IOKind == "" {
		return id + "\n" + ext.Name
	}
	return fmt.Sprintf("%s\n%s %s", id, ext.IOKind, ext.Name)
}

func port(name, typ string, detailed bool) string {
	if detailed {
		return fmt.Sprintf("<%s> %s: %s", name, name, typ)
	}
	return fmt.Sprintf("<%s> %s", name, name)
}

func record(inputs []string, title string, outputs []string) string {
	fields := make([]string, 0, 3)
	if len(inputs) > 0 {
		fields = append(fields, "{"+strings.Join(inputs, "|")+"}")
	}
	fields = append(fields, title)
	if len(outputs) > 0 {
		fields = append(fields, "{"+strings.Join(outputs, "|")+"}")
	}
	return "{" + strings.Join(fields, "|") + "}"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one sized in
// user units so the image scales when embedded.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
