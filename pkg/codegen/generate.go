package codegen

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"text/template"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// StagedInput returns the name of the variable that carries a value into the
// input port of a node. Distinct ports can map to the same name when ids or
// port names contain '_' (a.b_c and a_b.c); GenerateCode rejects such graphs.
func StagedInput(nodeID, port string) string {
	return "inp_" + nodeID + "_" + port
}

// BuildShader schedules nodes and generates the shader source for them.
func BuildShader(reg nodetype.Registry, nodes []graph.Node) (string, error) {
	return GenerateCode(reg, Sort(NewGraph(nodes)))
}

// GenerateCode emits the source for nodes, which must already be in execution
// order (see Sort).
//
// The output declares every non built-in external, then a main function that
// declares the staged input variable of every input port and runs one block per
// node. A block declares the node's outputs, runs its body with input names
// replaced by staged variables and copies each output into the staged inputs of
// the connected nodes.
//
// Returns UNKNOWN_NODE_TYPE when a function node's type is not in reg,
// UNRESOLVED_TYPE when a generic port has no concrete type yet,
// TEMPLATE_ERROR when a body template fails to execute and INVALID_INPUT when
// two input ports would share a staged variable.
func GenerateCode(reg nodetype.Registry, ordered []graph.Node) (string, error) {
	view := NewGraph(ordered)
	gen := &generator{reg: reg, view: view}

	units := make([]unit, 0, len(ordered))
	staged := make(map[string]string)
	for _, n := range ordered {
		u, err := gen.unit(n)
		if err != nil {
			return "", err
		}
		for _, in := range u.inputs {
			port := u.id + "." + in.port
			if prev, ok := staged[in.name]; ok {
				return "", errors.New(errors.ErrCodeInvalidInput,
					"inputs %s and %s both map to staged variable %s; rename a node or port", prev, port, in.name)
			}
			staged[in.name] = port
		}
		units = append(units, u)
	}

	var b strings.Builder
	if externals := declareExternals(ordered); len(externals) > 0 {
		for _, line := range externals {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("void main(void) {\n")
	for _, u := range units {
		if len(u.inputs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\t// node %s\n", u.id)
		for _, in := range u.inputs {
			fmt.Fprintf(&b, "\t%s %s;\n", in.typ, in.name)
		}
	}
	for _, u := range units {
		b.WriteString("\n")
		fmt.Fprintf(&b, "\t// node %s, %s\n", u.id, u.typeName)
		b.WriteString("\t{\n")
		for _, line := range u.lines {
			if line == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString("\t\t" + line + "\n")
		}
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// declareExternals returns one declaration per distinct external in order of
// first use. Built-ins and externals without a storage qualifier are skipped.
func declareExternals(nodes []graph.Node) []string {
	var lines []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		var ext graph.External
		switch n := n.(type) {
		case *graph.ExternalInputNode:
			ext = n.External()
		case *graph.ExternalOutputNode:
			ext = n.External()
		case *graph.FunctionNode:
			continue
		}
		if ext.Builtin() || ext.IOKind == "" {
			continue
		}
		line := fmt.Sprintf("%s %s %s;", ext.IOKind, ext.DataType, ext.Name)
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}
	return lines
}

type variable struct {
	typ  string
	name string
	port string
}

// unit is the generated code of one node.
type unit struct {
	id       string
	typeName string
	inputs   []variable // staged input declarations
	lines    []string   // block contents
}

type generator struct {
	reg  nodetype.Registry
	view *Graph
}

func (g *generator) unit(n graph.Node) (unit, error) {
	u := unit{id: n.ID(), typeName: n.TypeName()}

	switch n := n.(type) {
	case *graph.ExternalInputNode:
		ext := n.External()
		u.lines = append(u.lines, fmt.Sprintf("%s %s = %s;", ext.DataType, graph.ExternalPort, ext.Name))
		u.lines = append(u.lines, g.copyOut(n)...)

	case *graph.ExternalOutputNode:
		ext := n.External()
		staged := StagedInput(n.ID(), graph.ExternalPort)
		u.inputs = append(u.inputs, variable{typ: ext.DataType, name: staged, port: graph.ExternalPort})
		u.lines = append(u.lines, fmt.Sprintf("%s = %s;", ext.Name, staged))

	case *graph.FunctionNode:
		def, ok := g.reg.Lookup(n.TypeName())
		if !ok {
			return unit{}, errors.New(errors.ErrCodeUnknownNodeType, "unknown node type %q (node %q)", n.TypeName(), n.ID())
		}

		for _, p := range def.Inputs {
			typ, err := portType(n, p)
			if err != nil {
				return unit{}, err
			}
			u.inputs = append(u.inputs, variable{typ: typ, name: StagedInput(n.ID(), p.Name), port: p.Name})
		}
		for _, p := range def.Outputs {
			typ, err := portType(n, p)
			if err != nil {
				return unit{}, err
			}
			u.lines = append(u.lines, fmt.Sprintf("%s %s;", typ, p.Name))
		}

		body, err := expandBody(n, def)
		if err != nil {
			return unit{}, err
		}
		if body != "" {
			u.lines = append(u.lines, strings.Split(body, "\n")...)
		}
		u.lines = append(u.lines, g.copyOut(n)...)
	}
	return u, nil
}

// copyOut returns the assignments forwarding n's outputs to connected inputs.
func (g *generator) copyOut(n graph.Node) []string {
	var lines []string
	for _, c := range g.view.Edges(n) {
		lines = append(lines, fmt.Sprintf("%s = %s;", StagedInput(c.To, c.Input), c.Output))
	}
	return lines
}

// portType returns the concrete type of a port on n.
func portType(n *graph.FunctionNode, p nodetype.Port) (string, error) {
	if !p.Generic {
		return p.Type, nil
	}
	r, ok := n.Resolved(p.Type)
	if !ok {
		return "", errors.New(errors.ErrCodeUnresolvedType,
			"generic type %s of port %q on node %q is not resolved", p.Type, p.Name, n.ID())
	}
	return r.Type, nil
}

// expandBody executes the body template of def against the node's defines and
// replaces references to input names with staged variables. A name directly
// after '.' is a field selector or swizzle (v.x) and is left alone.
func expandBody(n *graph.FunctionNode, def *nodetype.Definition) (string, error) {
	defines := make(map[string]string, len(def.Defaults))
	maps.Copy(defines, def.Defaults)
	maps.Copy(defines, n.Defines())

	tmpl, err := template.New(def.Name).Option("missingkey=error").Parse(def.Body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplate, err, "parse body of node type %q", def.Name)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, defines); err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplate, err, "expand body of node %q", n.ID())
	}

	body := strings.TrimRight(out.String(), "\n")
	if len(def.Inputs) == 0 {
		return body, nil
	}
	return replaceInputs(body, n.ID(), def.Inputs), nil
}

// replaceInputs rewrites every free occurrence of an input name in one pass,
// so a staged name is never rewritten again.
func replaceInputs(body, nodeID string, inputs []nodetype.Port) string {
	names := make([]string, len(inputs))
	for i, p := range inputs {
		names[i] = regexp.QuoteMeta(p.Name)
	}
	// Group 1 is the character before the name, kept as is.
	re := regexp.MustCompile(`(^|[^.\w])(` + strings.Join(names, "|") + `)\b`)

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
		start, end := m[4], m[5]
		b.WriteString(body[last:start])
		b.WriteString(StagedInput(nodeID, body[start:end]))
		last = end
	}
	b.WriteString(body[last:])
	return b.String()
}
