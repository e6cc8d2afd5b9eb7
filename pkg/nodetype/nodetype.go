package nodetype

import (
	"maps"
	"slices"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Port is a named, typed input or output slot of a node type.
//
// Generic always equals IsTypeVariable(Type): the declaration format has no
// other way to express genericity. MapRegistry recomputes it on registration, so
// ports built by hand need not set it.
type Port struct {
	Name    string `json:"name"`
	Type    string `json:"type"`              // Concrete type, or the type variable if Generic
	Generic bool   `json:"generic,omitempty"` // Type names a type variable
}

// NewPort creates a port and derives Generic from the type name.
func NewPort(name, typ string) Port {
	return Port{Name: name, Type: typ, Generic: IsTypeVariable(typ)}
}

// IsTypeVariable reports whether a type name denotes a generic type variable.
func IsTypeVariable(typ string) bool {
	r, _ := utf8.DecodeRuneInString(typ)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// Definition describes a node type.
//
// The zero value is a valid type with no ports and an empty body.
type Definition struct {
	Name     string            `json:"name"`
	Inputs   []Port            `json:"inputs"`
	Outputs  []Port            `json:"outputs"`
	Body     string            `json:"body"`
	Defaults map[string]string `json:"defaults,omitempty"` // Type-level defines, shadowed per node
}

// Input returns the input port with the given name.
func (d *Definition) Input(name string) (Port, bool) {
	return findPort(d.Inputs, name)
}

// Output returns the output port with the given name.
func (d *Definition) Output(name string) (Port, bool) {
	return findPort(d.Outputs, name)
}

// IsGeneric reports whether any port of the definition is generic.
func (d *Definition) IsGeneric() bool {
	return slices.ContainsFunc(d.Inputs, isGeneric) || slices.ContainsFunc(d.Outputs, isGeneric)
}

// GenericOutputs returns the names of the outputs bound to the type variable v.
func (d *Definition) GenericOutputs(v string) []string {
	var names []string
	for _, p := range d.Outputs {
		if p.Generic && p.Type == v {
			names = append(names, p.Name)
		}
	}
	return names
}

func isGeneric(p Port) bool { return p.Generic }

func findPort(ports []Port, name string) (Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Registry is a read-only mapping from type name to definition.
// Implementations must be safe for concurrent readers.
type Registry interface {
	Lookup(name string) (*Definition, bool)
	Names() []string
}

// MapRegistry is a map-backed Registry.
// Registration is expected to finish before the registry is shared; Register is
// nevertheless safe to call concurrently with lookups.
type MapRegistry struct {
	mu    sync.RWMutex
	types map[string]*Definition
}

// NewMapRegistry creates a registry holding defs, keyed by their Name.
// Definitions are stored as normalized copies (see Register).
func NewMapRegistry(defs ...*Definition) *MapRegistry {
	r := &MapRegistry{types: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		r.types[d.Name] = normalize(d)
	}
	return r
}

// Register adds or replaces a definition. It stores a copy whose port Generic
// flags are derived from the port types; d itself is not modified.
func (r *MapRegistry) Register(d *Definition) {
	n := normalize(d)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Name] = n
}

func normalize(d *Definition) *Definition {
	c := *d
	c.Inputs = normalizePorts(d.Inputs)
	c.Outputs = normalizePorts(d.Outputs)
	c.Defaults = maps.Clone(d.Defaults)
	return &c
}

func normalizePorts(ports []Port) []Port {
	if ports == nil {
		return nil
	}
	out := make([]Port, len(ports))
	for i, p := range ports {
		out[i] = NewPort(p.Name, p.Type)
	}
	return out
}

// Lookup returns the definition registered under name.
func (r *MapRegistry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Names returns all registered type names in sorted order.
func (r *MapRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.types))
}

// Len returns the number of registered types.
func (r *MapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

var _ Registry = (*MapRegistry)(nil)
