package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/shadergraph/pkg/graph"
	sgio "github.com/matzehuels/shadergraph/pkg/io"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/observability"
	"github.com/matzehuels/shadergraph/pkg/registry"
)

// LoadRegistry returns the registry selected by opts: the .node files under
// opts.RegistryDir, or the builtin library when no directory is set.
func LoadRegistry(opts Options) (nodetype.Registry, error) {
	if opts.RegistryDir == "" {
		return registry.Builtin(), nil
	}
	reg, err := registry.LoadDir(opts.RegistryDir, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

// Load imports the graph file at path against reg.
func Load(ctx context.Context, path string, reg nodetype.Registry) (*graph.Structure, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	s, err := sgio.Import(path, reg)

	nodes := 0
	if s != nil {
		nodes = s.Len()
	}
	hooks.OnLoadComplete(ctx, path, nodes, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return s, nil
}

func countEdges(s *graph.Structure) int {
	n := 0
	for _, c := range s.Connections() {
		if !c.Unused() {
			n++
		}
	}
	return n
}
