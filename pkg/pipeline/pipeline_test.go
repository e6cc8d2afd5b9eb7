package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shadergraph/pkg/cache"
	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/registry"
)

const scaleGraph = `
input "in" {
  kind = "uniform"
  type = "float"
  name = "intensity"
}

node "s" {
  type = "scale"
}

output "o" {
  kind = "varying"
  type = "float"
  name = "vOut"
}

connect {
  from = "in.value"
  to   = "s.x"
}

connect {
  from = "s.result"
  to   = "o.value"
}
`

func writeGraph(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("ValidateAndSetDefaults() without graph should fail")
	}

	opts = Options{Graph: "g.hcl", Formats: []string{"svg", "dot", "svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if got := strings.Join(opts.Formats, ","); got != "dot,svg" {
		t.Errorf("Formats = %s, want dot,svg", got)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	opts = Options{Graph: "g.hcl"}
	_ = opts.ValidateAndSetDefaults()
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	path := writeGraph(t, t.TempDir(), "scale.hcl", scaleGraph)
	r := testRunner(t)
	defer r.Close()

	res, err := r.Execute(ctx, Options{Graph: path, Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.BuildHit {
		t.Error("first build should miss the cache")
	}
	if got := strings.Join(res.Order, ","); got != "in,s,o" {
		t.Errorf("Order = %s, want in,s,o", got)
	}
	for _, want := range []string{
		"uniform float intensity;",
		"varying float vOut;",
		"void main(void) {",
		"result = inp_s_x * float(2);",
	} {
		if !strings.Contains(res.Source, want) {
			t.Errorf("Source missing %q:\n%s", want, res.Source)
		}
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %+v, want 3 nodes and 2 edges", res.Stats)
	}
	if res.RegistryHash != registry.Hash(registry.Builtin()) {
		t.Error("RegistryHash does not match the builtin registry")
	}

	again, err := r.Execute(ctx, Options{Graph: path})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.BuildHit {
		t.Error("second build should hit the cache")
	}
	if again.Source != res.Source {
		t.Errorf("cached Source differs:\n%s\nwant\n%s", again.Source, res.Source)
	}

	fresh, err := r.Execute(ctx, Options{Graph: path, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.BuildHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := testRunner(t)

	if _, err := r.Execute(ctx, Options{}); err == nil {
		t.Error("Execute() without graph should fail")
	}
	if _, err := r.Execute(ctx, Options{Graph: filepath.Join(dir, "missing.hcl")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	dangling := writeGraph(t, dir, "dangling.hcl", `node "i" { type = "identity" }`)
	if _, err := r.Execute(ctx, Options{Graph: dangling}); !errors.Is(err, errors.ErrCodeUnresolvedType) {
		t.Errorf("Execute(unresolved) error = %v, want UNRESOLVED_TYPE", err)
	}

	if _, err := r.Execute(ctx, Options{Graph: writeGraph(t, dir, "g.hcl", scaleGraph), RegistryDir: filepath.Join(dir, "nope")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute(bad registry) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := testRunner(t)

	var opts []Options
	for _, name := range []string{"a.hcl", "b.hcl", "c.hcl"} {
		opts = append(opts, Options{Graph: writeGraph(t, dir, name, scaleGraph)})
	}

	results, err := r.ExecuteAll(ctx, opts, 2)
	if err != nil {
		t.Fatalf("ExecuteAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, res := range results {
		if res.Graph != opts[i].Graph {
			t.Errorf("results[%d].Graph = %s, want %s", i, res.Graph, opts[i].Graph)
		}
	}

	opts = append(opts, Options{Graph: filepath.Join(dir, "missing.hcl")})
	if _, err := r.ExecuteAll(ctx, opts, 0); err == nil {
		t.Error("ExecuteAll() with a missing graph should fail")
	}
}

func TestBuildStructure(t *testing.T) {
	s := graph.NewStructure(registry.Builtin())
	in := graph.NewExternalInput("n", graph.External{IOKind: graph.IOAttribute, DataType: "vec3", Name: "normal"})
	norm := graph.NewFunctionNode("u", "normalize", nil)
	for _, n := range []graph.Node{in, norm} {
		if err := s.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddConnection(graph.Connection{From: "n", Output: graph.ExternalPort, To: "u", Input: "v"}); err != nil {
		t.Fatal(err)
	}

	res, err := testRunner(t).BuildStructure(context.Background(), s, Options{})
	if err != nil {
		t.Fatalf("BuildStructure() error = %v", err)
	}
	if res.Graph != "" {
		t.Errorf("Graph = %q, want empty for in-memory builds", res.Graph)
	}
	if !strings.Contains(res.Source, "attribute vec3 normal;") {
		t.Errorf("Source missing attribute declaration:\n%s", res.Source)
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t)
	s, err := Load(ctx, writeGraph(t, t.TempDir(), "g.hcl", scaleGraph), registry.Builtin())
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Formats: []string{FormatDOT}, Detailed: true}
	artifacts, hit, err := r.Render(ctx, s, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if dot := string(artifacts[FormatDOT]); !strings.Contains(dot, "digraph G") || !strings.Contains(dot, "x: float") {
		t.Errorf("DOT output unexpected:\n%s", dot)
	}

	if _, hit, _ := r.Render(ctx, s, opts); !hit {
		t.Error("second render should hit the cache")
	}
	if _, _, err := r.Render(ctx, s, Options{Formats: []string{"pdf"}}); err == nil {
		t.Error("Render(pdf) should fail")
	}
}

func TestStructureHash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := Load(ctx, writeGraph(t, dir, "a.hcl", scaleGraph), registry.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(ctx, writeGraph(t, dir, "b.hcl", scaleGraph), registry.Builtin())
	if err != nil {
		t.Fatal(err)
	}

	ha, _ := StructureHash(a)
	hb, _ := StructureHash(b)
	if ha != hb {
		t.Error("equal graphs should hash equally")
	}

	if err := b.RemoveConnection(graph.Connection{From: "s", Output: "result", To: "o", Input: graph.ExternalPort}); err != nil {
		t.Fatal(err)
	}
	if hb, _ = StructureHash(b); ha == hb {
		t.Error("different graphs should hash differently")
	}
}
