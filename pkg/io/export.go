package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
)

// File extensions recognized by Import and Export.
const (
	ExtJSON = ".json"
	ExtHCL  = ".hcl"
)

// WriteJSON encodes the structure's records as indented JSON and writes them to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(s *graph.Structure, w io.Writer) error {
	return graph.WriteStructure(s, w)
}

// ExportJSON writes the structure to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(s *graph.Structure, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(s, w) })
}

// ExportHCL writes the structure to an HCL file at path.
func ExportHCL(s *graph.Structure, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteHCL(s, w) })
}

// Export writes the structure in the format implied by the extension of path.
func Export(s *graph.Structure, path string) error {
	switch filepath.Ext(path) {
	case ExtJSON:
		return ExportJSON(s, path)
	case ExtHCL:
		return ExportHCL(s, path)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported graph file extension %q (want %s or %s)", filepath.Ext(path), ExtJSON, ExtHCL)
	}
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
