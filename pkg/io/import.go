package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// ReadJSON decodes JSON records from r and rebuilds the structure.
//
// ReadJSON returns an error if the JSON is malformed, a record has no type,
// a function node's type is not in reg, or replaying the recorded connections
// violates a graph invariant (occupied port, cycle, type mismatch).
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader, reg nodetype.Registry) (*graph.Structure, error) {
	return graph.ReadStructure(reg, r)
}

// ImportJSON reads a JSON file at path and returns the decoded structure.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string, reg nodetype.Registry) (*graph.Structure, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadJSON(f, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ImportHCL reads an HCL file at path and returns the decoded structure.
func ImportHCL(path string, reg nodetype.Registry) (*graph.Structure, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ReadHCL(src, path, reg)
}

// Import reads a graph file in the format implied by the extension of path.
func Import(path string, reg nodetype.Registry) (*graph.Structure, error) {
	switch filepath.Ext(path) {
	case ExtJSON:
		return ImportJSON(path, reg)
	case ExtHCL:
		return ImportHCL(path, reg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph file extension %q (want %s or %s)", filepath.Ext(path), ExtJSON, ExtHCL)
	}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
