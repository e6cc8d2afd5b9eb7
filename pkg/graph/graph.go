package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// =============================================================================
// Structure Serialization API
// =============================================================================

// MarshalStructure converts a structure to JSON bytes.
// Records are keyed by node id, which encoding/json emits in sorted order.
func MarshalStructure(s *Structure) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeStructureTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalStructure decodes JSON records and rebuilds the structure.
func UnmarshalStructure(reg nodetype.Registry, data []byte) (*Structure, error) {
	return readStructureFrom(reg, bytes.NewReader(data))
}

// WriteStructureFile writes a structure to a JSON file.
// The file is created with 0644 permissions.
func WriteStructureFile(s *Structure, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeStructureTo(s, f)
}

// WriteStructure writes a structure as JSON to an io.Writer.
func WriteStructure(s *Structure, w io.Writer) error {
	return writeStructureTo(s, w)
}

// ReadStructureFile reads a JSON file and rebuilds the structure it describes.
// Returns validation errors for records describing an invalid graph.
func ReadStructureFile(reg nodetype.Registry, path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readStructureFrom(reg, f)
}

// ReadStructure decodes JSON records from an io.Reader and rebuilds the structure.
func ReadStructure(reg nodetype.Registry, r io.Reader) (*Structure, error) {
	return readStructureFrom(reg, r)
}

// UnmarshalRecords decodes JSON records without building a structure.
func UnmarshalRecords(data []byte) (map[string]Record, error) {
	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return records, nil
}

// MarshalJSON encodes the structure as its records.
func (s *Structure) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToRecords())
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeStructureTo(s *Structure, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.ToRecords()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readStructureFrom(reg nodetype.Registry, r io.Reader) (*Structure, error) {
	var records map[string]Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromRecords(reg, records)
}
