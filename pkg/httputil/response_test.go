package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/shadergraph/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeTypeMismatch, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeCycleDetected, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodePortOccupied, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnknownNodeType, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", errors.New(errors.ErrCodeParse, "x")), http.StatusBadRequest},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	tm := &errors.TypeMismatchError{Node: "s", Port: "x", Expected: "float", Actual: "vec3"}
	rec := httptest.NewRecorder()
	status := WriteError(rec, fmt.Errorf("build: %w", errors.TypeMismatch(tm)))

	if status != http.StatusUnprocessableEntity || rec.Code != status {
		t.Errorf("status = %d (recorded %d), want 422", status, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != errors.ErrCodeTypeMismatch {
		t.Errorf("code = %s, want TYPE_MISMATCH", body.Error.Code)
	}
	if body.Error.Mismatch == nil || body.Error.Mismatch.Actual != "vec3" {
		t.Errorf("mismatch = %+v, want actual vec3", body.Error.Mismatch)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("dial tcp 10.0.0.1:27017: refused"))

	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), string(errors.ErrCodeInternal)) {
		t.Errorf("body missing INTERNAL_ERROR: %s", rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var v map[string]int

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 1}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, 1024, &v); err != nil || v["a"] != 1 {
		t.Errorf("DecodeJSON() = %v, %v; want a=1", v, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	if err := DecodeJSON(httptest.NewRecorder(), req, 1024, &v); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("DecodeJSON(malformed) error = %v, want INVALID_FORMAT", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 1}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, 3, &v); StatusFor(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("DecodeJSON(oversized) error = %v, want 413", err)
	}
}
