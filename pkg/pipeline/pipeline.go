// Package pipeline provides the shader build pipeline for shadergraph.
//
// This package implements the complete load → build → render pipeline that
// is used by the CLI and the HTTP service, so that both entry points share
// caching, logging and validation behavior.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the node type registry (a directory of .node files or the
//     builtin library) and import the graph file (JSON or HCL)
//  2. Build: Schedule the nodes and generate the shader source
//  3. Render: Export a node-link diagram (DOT, SVG or PNG)
//
// Build and render results are cached under keys derived from the content
// hash of the graph and the hash of the registry.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Graph: "graphs/blur.hcl",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Source)
//
// Build a structure assembled in memory:
//
//	result, err := runner.BuildStructure(ctx, s, pipeline.Options{})
//
// Build many graphs concurrently:
//
//	results, err := runner.ExecuteAll(ctx, optsList, 4)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// Render formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats lists the supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// DefaultConcurrency bounds ExecuteAll when the caller passes no limit.
const DefaultConcurrency = 4

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// RegistryDir is a directory of .node declaration files. When empty the
	// builtin library is used.
	RegistryDir string `json:"registry_dir,omitempty"`

	// Strict rejects malformed declaration lines instead of skipping them.
	Strict bool `json:"strict,omitempty"`

	// Graph is the path of the graph file to build (.json or .hcl).
	Graph string `json:"graph,omitempty"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Formats selects the diagram formats produced by Render.
	Formats []string `json:"formats,omitempty"`

	// Detailed adds port types and resolved type variables to diagrams.
	Detailed bool `json:"detailed,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateFormat checks that format is a supported render format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats validates every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults validates options for a full Execute run and fills
// in defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Graph == "" {
		return fmt.Errorf("graph is required")
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRender checks render options and fills in defaults. It does
// not require a graph path, so it also serves in-memory structures.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	return ValidateFormats(o.Formats)
}

// SetDefaults fills in zero-valued fields.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	} else {
		o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of a build.
type Result struct {
	// Graph is the path the graph was loaded from, empty for in-memory builds.
	Graph string

	// Source is the generated shader source.
	Source string

	// Order lists node ids in execution order.
	Order []string

	GraphHash    string
	RegistryHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and timings of a run.
type Stats struct {
	NodeCount int
	EdgeCount int
	LoadTime  time.Duration
	BuildTime time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	BuildHit bool
}
