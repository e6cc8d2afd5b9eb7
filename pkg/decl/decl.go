// Package decl reads and writes the line-oriented declaration format used for
// node type definitions and node instance configurations.
//
// A declaration line has the form
//
//	#<directive> <word> <word>
//
// with directive one of input, output, uniform, attribute, varying or define.
// A node type definition is a header of declaration lines, an optional blank
// separator line and the body template:
//
//	#input T a
//	#input T b
//	#output T out
//
//	out = a + b;
//
// A node instance is either a single external declaration (#uniform float
// intensity) or a list of #define lines.
//
// The default parsers are lenient and skip lines they do not understand. The
// Strict variants reject them with a PARSE_ERROR carrying the line number.
package decl

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// Directive names.
const (
	DirectiveInput     = "input"
	DirectiveOutput    = "output"
	DirectiveUniform   = "uniform"
	DirectiveAttribute = "attribute"
	DirectiveVarying   = "varying"
	DirectiveDefine    = "define"
)

var declRegex = regexp.MustCompile(`^\s*#(\w+)\s+(\w+)\s+(\w+)\s*$`)

// Declaration is one parsed declaration line.
type Declaration struct {
	Directive string
	First     string
	Second    string
}

// ParseDeclaration matches a single line against the declaration grammar.
func ParseDeclaration(line string) (Declaration, bool) {
	m := declRegex.FindStringSubmatch(line)
	if m == nil {
		return Declaration{}, false
	}
	return Declaration{Directive: m[1], First: m[2], Second: m[3]}, true
}

func (d Declaration) String() string {
	return "#" + d.Directive + " " + d.First + " " + d.Second
}

// Instance is the configuration of a node instance: either an external
// descriptor or a set of defines. External is nil for function nodes.
type Instance struct {
	External *graph.External
	Defines  map[string]string
}

// IsExternal reports whether the instance describes an external node.
func (i Instance) IsExternal() bool { return i.External != nil }

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// header returns the declarations of the leading header and the index of the
// first body line. One blank separator line after a non-empty header belongs to
// the header.
func header(lines []string) ([]Declaration, int) {
	var decls []Declaration
	i := 0
	for ; i < len(lines); i++ {
		d, ok := ParseDeclaration(lines[i])
		if !ok {
			break
		}
		decls = append(decls, d)
	}
	if i > 0 && i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return decls, i
}

// ParseNodeDefinition parses a node type definition. The returned definition has
// no name; registries name types after the file they were loaded from.
//
// Each #input and #output line becomes a port (type first, then name) and each
// #define line a default value. Other directives in the header are ignored.
func ParseNodeDefinition(text string) nodetype.Definition {
	lines := splitLines(text)
	decls, bodyStart := header(lines)

	var def nodetype.Definition
	for _, d := range decls {
		switch d.Directive {
		case DirectiveInput:
			def.Inputs = append(def.Inputs, nodetype.NewPort(d.Second, d.First))
		case DirectiveOutput:
			def.Outputs = append(def.Outputs, nodetype.NewPort(d.Second, d.First))
		case DirectiveDefine:
			if def.Defaults == nil {
				def.Defaults = make(map[string]string)
			}
			def.Defaults[d.First] = d.Second
		}
	}
	def.Body = strings.Join(lines[bodyStart:], "\n")
	return def
}

// ParseNodeDefinitionStrict parses like ParseNodeDefinition but rejects external
// or unknown directives in the header, duplicate port or define names and port
// declarations inside the body.
func ParseNodeDefinitionStrict(text string) (nodetype.Definition, error) {
	lines := splitLines(text)
	decls, bodyStart := header(lines)

	var def nodetype.Definition
	ports := make(map[string]bool)
	for i, d := range decls {
		line := i + 1
		switch d.Directive {
		case DirectiveInput, DirectiveOutput:
			p := nodetype.NewPort(d.Second, d.First)
			if ports[p.Name] {
				return nodetype.Definition{}, parseError(line, lines[i], "duplicate port "+p.Name)
			}
			ports[p.Name] = true
			if d.Directive == DirectiveInput {
				def.Inputs = append(def.Inputs, p)
			} else {
				def.Outputs = append(def.Outputs, p)
			}
		case DirectiveDefine:
			if _, dup := def.Defaults[d.First]; dup {
				return nodetype.Definition{}, parseError(line, lines[i], "duplicate define "+d.First)
			}
			if def.Defaults == nil {
				def.Defaults = make(map[string]string)
			}
			def.Defaults[d.First] = d.Second
		default:
			return nodetype.Definition{}, parseError(line, lines[i], "unexpected directive #"+d.Directive+" in node definition")
		}
	}

	for i := bodyStart; i < len(lines); i++ {
		if d, ok := ParseDeclaration(lines[i]); ok && (d.Directive == DirectiveInput || d.Directive == DirectiveOutput) {
			return nodetype.Definition{}, parseError(i+1, lines[i], "port declaration after the header")
		}
	}

	def.Body = strings.Join(lines[bodyStart:], "\n")
	return def, nil
}

// ParseNodeInstance parses a node instance configuration. The first uniform,
// attribute or varying line makes the instance external and wins over any other
// line. Otherwise every #define line is collected.
func ParseNodeInstance(text string) Instance {
	defines := make(map[string]string)
	for _, line := range splitLines(text) {
		d, ok := ParseDeclaration(line)
		if !ok {
			continue
		}
		if kind, ok := graph.ParseIOKind(d.Directive); ok {
			return Instance{External: &graph.External{IOKind: kind, DataType: d.First, Name: d.Second}}
		}
		if d.Directive == DirectiveDefine {
			defines[d.First] = d.Second
		}
	}
	return Instance{Defines: defines}
}

// ParseNodeInstanceStrict parses like ParseNodeInstance but rejects lines that
// are neither blank nor declarations, port directives, more than one external
// declaration, externals mixed with defines and duplicate defines.
func ParseNodeInstanceStrict(text string) (Instance, error) {
	var ext *graph.External
	defines := make(map[string]string)
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, ok := ParseDeclaration(line)
		if !ok {
			return Instance{}, parseError(i+1, line, "not a declaration")
		}
		kind, isExternal := graph.ParseIOKind(d.Directive)
		switch {
		case isExternal:
			if ext != nil {
				return Instance{}, parseError(i+1, line, "more than one external declaration")
			}
			if len(defines) > 0 {
				return Instance{}, parseError(i+1, line, "external declaration mixed with defines")
			}
			ext = &graph.External{IOKind: kind, DataType: d.First, Name: d.Second}
		case d.Directive == DirectiveDefine:
			if ext != nil {
				return Instance{}, parseError(i+1, line, "define on an external instance")
			}
			if _, dup := defines[d.First]; dup {
				return Instance{}, parseError(i+1, line, "duplicate define "+d.First)
			}
			defines[d.First] = d.Second
		default:
			return Instance{}, parseError(i+1, line, "unexpected directive #"+d.Directive+" in node instance")
		}
	}
	if ext != nil {
		return Instance{External: ext}, nil
	}
	return Instance{Defines: defines}, nil
}

// StringifyNodeDefinition renders a definition in declaration format: inputs,
// outputs, sorted defaults, a blank separator line and the body. Definitions
// without ports or defaults render as the bare body.
func StringifyNodeDefinition(d nodetype.Definition) string {
	var lines []string
	for _, p := range d.Inputs {
		lines = append(lines, Declaration{DirectiveInput, p.Type, p.Name}.String())
	}
	for _, p := range d.Outputs {
		lines = append(lines, Declaration{DirectiveOutput, p.Type, p.Name}.String())
	}
	lines = append(lines, defineLines(d.Defaults)...)
	if len(lines) == 0 {
		return d.Body
	}
	return strings.Join(lines, "\n") + "\n\n" + d.Body
}

// StringifyNodeInstance renders an instance in declaration format. Externals
// without an io kind (built-in outputs such as gl_FragColor) have no textual form
// and render as the empty string.
func StringifyNodeInstance(i Instance) string {
	if i.External != nil {
		if i.External.IOKind == "" {
			return ""
		}
		return Declaration{string(i.External.IOKind), i.External.DataType, i.External.Name}.String()
	}
	return strings.Join(defineLines(i.Defines), "\n")
}

func defineLines(defines map[string]string) []string {
	var lines []string
	for _, name := range slices.Sorted(maps.Keys(defines)) {
		lines = append(lines, Declaration{DirectiveDefine, name, defines[name]}.String())
	}
	return lines
}

func parseError(line int, text, reason string) error {
	pe := &errors.ParseError{Line: line, Text: text, Reason: reason}
	return errors.Wrap(errors.ErrCodeParse, pe, "invalid declaration")
}
