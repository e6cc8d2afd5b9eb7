package nodetype

import (
	"slices"
	"testing"
)

func TestIsTypeVariable(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"T", true},
		{"Vec", true},
		{"float", false},
		{"vec3", false},
		{"sampler2D", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTypeVariable(tt.typ); got != tt.want {
			t.Errorf("IsTypeVariable(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestDefinitionPorts(t *testing.T) {
	d := &Definition{
		Name:    "mix",
		Inputs:  []Port{NewPort("a", "T"), NewPort("b", "T"), NewPort("t", "float")},
		Outputs: []Port{NewPort("out", "T"), NewPort("alpha", "float")},
	}

	if p, ok := d.Input("t"); !ok || p.Generic {
		t.Errorf("Input(t) = %+v, %v; want fixed port", p, ok)
	}
	if _, ok := d.Input("missing"); ok {
		t.Error("Input(missing) should not be found")
	}
	if p, ok := d.Output("out"); !ok || !p.Generic {
		t.Errorf("Output(out) = %+v, %v; want generic port", p, ok)
	}
	if !d.IsGeneric() {
		t.Error("IsGeneric() = false, want true")
	}
	if got := d.GenericOutputs("T"); !slices.Equal(got, []string{"out"}) {
		t.Errorf("GenericOutputs(T) = %v, want [out]", got)
	}
}

func TestMapRegistry(t *testing.T) {
	r := NewMapRegistry(&Definition{Name: "b"}, &Definition{Name: "a"})
	r.Register(&Definition{Name: "c"})

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if got := r.Names(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Names() = %v, want [a b c]", got)
	}
	if _, ok := r.Lookup("a"); !ok {
		t.Error("Lookup(a) should succeed")
	}
	if _, ok := r.Lookup("z"); ok {
		t.Error("Lookup(z) should fail")
	}
}

func TestRegisterDerivesGeneric(t *testing.T) {
	def := &Definition{
		Name:    "odd",
		Inputs:  []Port{{Name: "a", Type: "float", Generic: true}},
		Outputs: []Port{{Name: "out", Type: "T"}},
	}

	for name, r := range map[string]*MapRegistry{
		"NewMapRegistry": NewMapRegistry(def),
		"Register":       func() *MapRegistry { r := NewMapRegistry(); r.Register(def); return r }(),
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := r.Lookup("odd")
			if !ok {
				t.Fatal("Lookup(odd) failed")
			}
			if got.Inputs[0].Generic {
				t.Error("input a of type float is generic, want concrete")
			}
			if !got.Outputs[0].Generic {
				t.Error("output out of type T is concrete, want generic")
			}
		})
	}

	if !def.Inputs[0].Generic || def.Outputs[0].Generic {
		t.Error("registration modified the caller's definition")
	}
}
