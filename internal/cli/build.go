package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shadergraph/pkg/codegen"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string // output file (single graph) or directory (several graphs)
	refresh     bool   // bypass cache reads
	noCache     bool   // disable the cache entirely
	concurrency int    // builds in flight for several graphs
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [graph...]",
		Short: "Generate shader source from graph files (.json or .hcl)",
		Long: `Build loads each graph, schedules its nodes in dependency order and
writes the generated shader source.

A single graph is written to stdout unless --output names a file. Several
graphs are built concurrently and each is written next to its input (or into
the --output directory) with a .glsl extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return c.runBuild(cmd.Context(), args[0], opts)
			}
			return c.runBuildAll(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory when building several graphs")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the build cache")
	cmd.Flags().IntVarP(&opts.concurrency, "jobs", "j", pipeline.DefaultConcurrency, "graphs built in parallel")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, path string, opts buildOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.options(path)
	popts.Refresh = opts.refresh
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Print(result.Source)
		return nil
	}
	if err := writeFile(opts.output, []byte(result.Source)); err != nil {
		return err
	}
	printSuccess("Built %s", path)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.BuildHit)
	printFile(opts.output)
	printNextStep("Inspect the graph", "shadergraph render --detailed "+path)
	return nil
}

func (c *CLI) runBuildAll(ctx context.Context, paths []string, opts buildOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	optsList := make([]pipeline.Options, len(paths))
	for i, p := range paths {
		optsList[i] = c.options(p)
		optsList[i].Refresh = opts.refresh
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Building %d graphs...", len(paths)))
	spin.Start()
	results, err := runner.ExecuteAll(ctx, optsList, opts.concurrency)
	if err != nil {
		spin.StopWithError("Build failed")
		return err
	}
	spin.Stop()

	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, r := range results {
		out := basePath(r.Graph) + sourceExt
		if opts.output != "" {
			out = filepath.Join(opts.output, filepath.Base(out))
		}
		if err := writeFile(out, []byte(r.Source)); err != nil {
			return err
		}
		printSuccess("Built %s", r.Graph)
		printStats(r.Stats.NodeCount, r.Stats.EdgeCount, r.CacheInfo.BuildHit)
		printFile(out)
	}
	prog.done(fmt.Sprintf("Built %d graphs", len(results)))
	return nil
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [graph]",
		Short: "Validate a graph and report unresolved generic types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runCheck(ctx context.Context, path string) error {
	s, err := c.load(ctx, path)
	if err != nil {
		return err
	}

	unresolved := unresolvedTypes(s)
	for _, u := range unresolved {
		printWarning("%s: type variable %s is unresolved", u.node, u.variable)
	}

	if _, err := codegen.GenerateCode(s.Registry(), codegen.Sort(codegen.NewGraph(s.Nodes()))); err != nil {
		printError("%s", err)
		return fmt.Errorf("check %s: %w", path, err)
	}

	printSuccess("%s is valid", path)
	printKeyValue("nodes", fmt.Sprint(s.Len()))
	printKeyValue("connections", fmt.Sprint(len(s.Connections())))
	printKeyValue("order", strings.Join(codegen.Schedule(s.Nodes()), " → "))
	return nil
}

type unresolvedVar struct {
	node     string
	variable string
}

// unresolvedTypes lists the type variables of function nodes that no
// connection has bound yet, ordered by node id.
func unresolvedTypes(s *graph.Structure) []unresolvedVar {
	var out []unresolvedVar
	for _, n := range s.Nodes() {
		fn, ok := n.(*graph.FunctionNode)
		if !ok {
			continue
		}
		def, ok := s.Registry().Lookup(fn.TypeName())
		if !ok {
			continue
		}
		var vars []string
		for _, p := range slices.Concat(def.Inputs, def.Outputs) {
			if p.Generic && !slices.Contains(vars, p.Type) {
				vars = append(vars, p.Type)
			}
		}
		for _, v := range vars {
			if _, ok := fn.Resolved(v); !ok {
				out = append(out, unresolvedVar{node: fn.ID(), variable: v})
			}
		}
	}
	slices.SortFunc(out, func(a, b unresolvedVar) int {
		return cmp.Or(strings.Compare(a.node, b.node), strings.Compare(a.variable, b.variable))
	})
	return out
}

// sortCommand creates the sort command.
func (c *CLI) sortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sort [graph]",
		Short: "Print node ids in execution order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range codegen.Schedule(s.Nodes()) {
				fmt.Println(id)
			}
			return nil
		},
	}
}

// load imports a graph against the configured registry.
func (c *CLI) load(ctx context.Context, path string) (*graph.Structure, error) {
	reg, err := c.registry()
	if err != nil {
		return nil, err
	}
	s, err := pipeline.Load(ctx, path, reg)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded graph", "graph", path, "nodes", s.Len())
	return s, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
