package decl

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		line string
		want Declaration
		ok   bool
	}{
		{"#input float x", Declaration{"input", "float", "x"}, true},
		{"  #define  SCALE   2  ", Declaration{"define", "SCALE", "2"}, true},
		{"#uniform sampler2D tex", Declaration{"uniform", "sampler2D", "tex"}, true},
		{"#input float", Declaration{}, false},
		{"#input float x y", Declaration{}, false},
		{"# input float x", Declaration{}, false},
		{"out = x;", Declaration{}, false},
		{"", Declaration{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseDeclaration(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDeclaration(%q) = %+v, %v; want %+v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseNodeDefinition(t *testing.T) {
	text := "#input T a\n#input float t\n#output T out\n#define STEPS 4\n\nout = a * t;\nout *= STEPS;"
	d := ParseNodeDefinition(text)

	wantInputs := []nodetype.Port{
		{Name: "a", Type: "T", Generic: true},
		{Name: "t", Type: "float"},
	}
	if !reflect.DeepEqual(d.Inputs, wantInputs) {
		t.Errorf("Inputs = %+v, want %+v", d.Inputs, wantInputs)
	}
	wantOutputs := []nodetype.Port{{Name: "out", Type: "T", Generic: true}}
	if !reflect.DeepEqual(d.Outputs, wantOutputs) {
		t.Errorf("Outputs = %+v, want %+v", d.Outputs, wantOutputs)
	}
	if d.Defaults["STEPS"] != "4" {
		t.Errorf("Defaults[STEPS] = %q, want 4", d.Defaults["STEPS"])
	}
	if want := "out = a * t;\nout *= STEPS;"; d.Body != want {
		t.Errorf("Body = %q, want %q", d.Body, want)
	}
}

func TestParseNodeDefinitionHeaderBoundary(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		inputs  int
		outputs int
		body    string
	}{
		{"LastHeaderLineClassified", "#input float x\n#output float out\nout = x;", 1, 1, "out = x;"},
		{"SeparatorConsumed", "#input float x\n#output float out\n\nout = x;", 1, 1, "out = x;"},
		{"OnlyOneSeparatorConsumed", "#input float x\n\n\nout = x;", 1, 0, "\nout = x;"},
		{"HeaderOnly", "#input float x\n#output float out", 1, 1, ""},
		{"HeaderWithTrailingNewline", "#input float x\n", 1, 0, ""},
		{"NoHeader", "\nout = 1.0;", 0, 0, "\nout = 1.0;"},
		{"BlankEndsHeader", "#input float x\n\n#output float out", 1, 0, "#output float out"},
		{"Empty", "", 0, 0, ""},
		{"CRLF", "#input float x\r\n#output float out\r\n\r\nout = x;", 1, 1, "out = x;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseNodeDefinition(tt.text)
			if len(d.Inputs) != tt.inputs {
				t.Errorf("len(Inputs) = %d, want %d", len(d.Inputs), tt.inputs)
			}
			if len(d.Outputs) != tt.outputs {
				t.Errorf("len(Outputs) = %d, want %d", len(d.Outputs), tt.outputs)
			}
			if d.Body != tt.body {
				t.Errorf("Body = %q, want %q", d.Body, tt.body)
			}
		})
	}
}

func TestParseNodeDefinitionLenient(t *testing.T) {
	d := ParseNodeDefinition("#uniform float time\n#frobnicate a b\n#output float out\n\nout = 1.0;")
	if len(d.Inputs) != 0 || len(d.Outputs) != 1 {
		t.Errorf("ports = %d in, %d out; want 0 in, 1 out", len(d.Inputs), len(d.Outputs))
	}
}

func TestParseNodeDefinitionStrict(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"Valid", "#input float x\n#output float out\n\nout = x;", 0},
		{"UnknownDirective", "#input float x\n#frobnicate a b\n\nout = x;", 2},
		{"ExternalDirective", "#uniform float time\n\nout = time;", 1},
		{"DuplicatePort", "#input float x\n#output float x\n\nx = x;", 2},
		{"DuplicateDefine", "#define A 1\n#define A 2\n\n", 2},
		{"PortInBody", "#input float x\n\nout = x;\n#output float out", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNodeDefinitionStrict(tt.text)
			if tt.line == 0 {
				if err != nil {
					t.Fatalf("ParseNodeDefinitionStrict() error = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Fatalf("error = %v, want PARSE_ERROR", err)
			}
			var pe *errors.ParseError
			if !asParseError(err, &pe) {
				t.Fatalf("error = %v, want *ParseError in chain", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseNodeDefinitionStrictMatchesLenient(t *testing.T) {
	text := "#input T a\n#input T b\n#output T out\n#define K 3\n\nout = a + b * K;"
	strict, err := ParseNodeDefinitionStrict(text)
	if err != nil {
		t.Fatal(err)
	}
	if lenient := ParseNodeDefinition(text); !reflect.DeepEqual(strict, lenient) {
		t.Errorf("strict = %+v, lenient = %+v", strict, lenient)
	}
}

func TestParseNodeInstance(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Instance
	}{
		{
			name: "Defines",
			text: "#define SCALE 2\n#define MODE linear",
			want: Instance{Defines: map[string]string{"SCALE": "2", "MODE": "linear"}},
		},
		{
			name: "Uniform",
			text: "#uniform float intensity",
			want: Instance{External: &graph.External{IOKind: graph.IOUniform, DataType: "float", Name: "intensity"}},
		},
		{
			name: "FirstExternalWins",
			text: "#define A 1\n#varying vec2 vUv\n#attribute vec3 position",
			want: Instance{External: &graph.External{IOKind: graph.IOVarying, DataType: "vec2", Name: "vUv"}},
		},
		{
			name: "IgnoresNoise",
			text: "hello\n#input float x\n  #define A 1  ",
			want: Instance{Defines: map[string]string{"A": "1"}},
		},
		{
			name: "Empty",
			text: "",
			want: Instance{Defines: map[string]string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNodeInstance(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseNodeInstance() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseNodeInstanceStrict(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"Defines", "#define A 1\n\n#define B 2\n", 0},
		{"External", "#attribute vec3 position", 0},
		{"Garbage", "#define A 1\nhello", 2},
		{"PortDirective", "#input float x", 1},
		{"TwoExternals", "#uniform float a\n#uniform float b", 2},
		{"ExternalAfterDefine", "#define A 1\n#uniform float a", 2},
		{"DefineAfterExternal", "#uniform float a\n#define A 1", 2},
		{"DuplicateDefine", "#define A 1\n#define A 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNodeInstanceStrict(tt.text)
			if tt.line == 0 {
				if err != nil {
					t.Fatalf("ParseNodeInstanceStrict() error = %v", err)
				}
				return
			}
			var pe *errors.ParseError
			if !asParseError(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestStringifyNodeDefinition(t *testing.T) {
	d := nodetype.Definition{
		Inputs:   []nodetype.Port{nodetype.NewPort("a", "T"), nodetype.NewPort("t", "float")},
		Outputs:  []nodetype.Port{nodetype.NewPort("out", "T")},
		Defaults: map[string]string{"Z": "1", "A": "0"},
		Body:     "out = a * t;",
	}
	want := "#input T a\n#input float t\n#output T out\n#define A 0\n#define Z 1\n\nout = a * t;"
	if got := StringifyNodeDefinition(d); got != want {
		t.Errorf("StringifyNodeDefinition() =\n%s\nwant\n%s", got, want)
	}

	if got := StringifyNodeDefinition(nodetype.Definition{Body: "gl_FragColor = vec4(1.0);"}); got != "gl_FragColor = vec4(1.0);" {
		t.Errorf("StringifyNodeDefinition(body only) = %q", got)
	}
}

func TestNodeDefinitionRoundTrip(t *testing.T) {
	defs := []nodetype.Definition{
		{Body: ""},
		{Body: "\n\nvoid helper() {}"},
		{
			Inputs:  []nodetype.Port{nodetype.NewPort("x", "T")},
			Outputs: []nodetype.Port{nodetype.NewPort("out", "T")},
			Body:    "out = x;",
		},
		{
			Inputs:  []nodetype.Port{nodetype.NewPort("a", "vec3"), nodetype.NewPort("b", "vec3")},
			Outputs: []nodetype.Port{nodetype.NewPort("d", "float")},
			Body:    "\nd = dot(a, b);\n",
		},
		{
			Outputs:  []nodetype.Port{nodetype.NewPort("c", "vec4")},
			Defaults: map[string]string{"R": "1", "G": "0"},
			Body:     "c = vec4(R, G, 0.0, 1.0);",
		},
	}

	for i, d := range defs {
		text := StringifyNodeDefinition(d)
		if got := ParseNodeDefinition(text); !reflect.DeepEqual(got, d) {
			t.Errorf("case %d: round trip = %+v, want %+v\ntext:\n%s", i, got, d, text)
		}
		got, err := ParseNodeDefinitionStrict(text)
		if err != nil {
			t.Errorf("case %d: strict parse of stringified form: %v", i, err)
		} else if !reflect.DeepEqual(got, d) {
			t.Errorf("case %d: strict round trip = %+v, want %+v", i, got, d)
		}
	}
}

func TestNodeInstanceRoundTrip(t *testing.T) {
	instances := []Instance{
		{Defines: map[string]string{}},
		{Defines: map[string]string{"SCALE": "2", "MODE": "linear"}},
		{External: &graph.External{IOKind: graph.IOAttribute, DataType: "vec3", Name: "position"}},
	}

	for i, inst := range instances {
		text := StringifyNodeInstance(inst)
		if got := ParseNodeInstance(text); !reflect.DeepEqual(got, inst) {
			t.Errorf("case %d: round trip = %+v, want %+v (text %q)", i, got, inst, text)
		}
	}
}

func TestStringifyBuiltinExternal(t *testing.T) {
	inst := Instance{External: &graph.External{DataType: "vec4", Name: "gl_FragColor"}}
	if got := StringifyNodeInstance(inst); got != "" {
		t.Errorf("StringifyNodeInstance() = %q, want empty", got)
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := ParseNodeDefinitionStrict("#varying vec2 vUv\n\n")
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error = %v, want line number in message", err)
	}
}

func asParseError(err error, target **errors.ParseError) bool {
	return stderrors.As(err, target)
}
