package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	occupied := New(ErrCodePortOccupied, "input %s of node %s", "x", "mix")
	if got, want := occupied.Error(), "PORT_OCCUPIED: input x of node mix"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("unexpected EOF")
	wrapped := Wrap(ErrCodeParse, cause, "decode %s", "graph.hcl")
	if got, want := wrapped.Error(), "PARSE_ERROR: decode graph.hcl: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Unwrap(wrapped) != cause || !errors.Is(wrapped, cause) {
		t.Error("Wrap does not expose its cause to errors.Unwrap/errors.Is")
	}
}

func TestCodeInspection(t *testing.T) {
	cycle := New(ErrCodeCycleDetected, "would create a cycle: a.out -> b.in")
	nested := fmt.Errorf("load scene.json: %w", Wrap(ErrCodeInvalidInput, New(ErrCodeParse, "inner"), "outer"))
	plain := errors.New("disk full")

	tests := []struct {
		name    string
		err     error
		is      Code
		wantIs  bool
		code    Code
		message string
	}{
		{"Direct", cycle, ErrCodeCycleDetected, true, ErrCodeCycleDetected, "would create a cycle: a.out -> b.in"},
		{"OtherCode", cycle, ErrCodePortOccupied, false, ErrCodeCycleDetected, "would create a cycle: a.out -> b.in"},
		{"OutermostCodeWins", nested, ErrCodeInvalidInput, true, ErrCodeInvalidInput, "outer"},
		{"Plain", plain, ErrCodeInvalidInput, false, "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.is); got != tt.wantIs {
				t.Errorf("Is(%s) = %v, want %v", tt.is, got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" {
		t.Error("nil error must carry no code")
	}
}

func TestTypeMismatch(t *testing.T) {
	t.Run("generic", func(t *testing.T) {
		err := TypeMismatch(&TypeMismatchError{Node: "mix", Port: "b", Variable: "T", Expected: "vec3", Actual: "float"})
		if !Is(err, ErrCodeTypeMismatch) {
			t.Fatalf("Is(err, TYPE_MISMATCH) = false")
		}
		var tm *TypeMismatchError
		if !errors.As(err, &tm) {
			t.Fatal("errors.As did not find TypeMismatchError")
		}
		if tm.Expected != "vec3" || tm.Actual != "float" {
			t.Errorf("Expected/Actual = %s/%s, want vec3/float", tm.Expected, tm.Actual)
		}
		if !strings.Contains(err.Error(), "generic type T") {
			t.Errorf("Error() = %q, want mention of generic type T", err.Error())
		}
	})

	t.Run("fixed", func(t *testing.T) {
		tm := &TypeMismatchError{Node: "out", Port: "value", Expected: "vec4", Actual: "float"}
		want := `could not match type float with type vec4 of input "value" on node "out"`
		if tm.Error() != want {
			t.Errorf("Error() = %q, want %q", tm.Error(), want)
		}
		if tm.Code() != ErrCodeTypeMismatch {
			t.Errorf("Code() = %v, want %v", tm.Code(), ErrCodeTypeMismatch)
		}
	})
}

func TestParseError(t *testing.T) {
	err := Wrap(ErrCodeParse, &ParseError{Line: 3, Text: "#bogus a b", Reason: "unknown directive"}, "invalid declaration")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As did not find ParseError")
	}
	if pe.Line != 3 {
		t.Errorf("Line = %d, want 3", pe.Line)
	}
	if pe.Code() != ErrCodeParse {
		t.Errorf("Code() = %v, want %v", pe.Code(), ErrCodeParse)
	}
}
