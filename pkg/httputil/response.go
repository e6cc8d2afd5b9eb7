package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/matzehuels/shadergraph/pkg/errors"
)

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`

	// Mismatch is set for TYPE_MISMATCH errors.
	Mismatch *errors.TypeMismatchError `json:"mismatch,omitempty"`
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if stderrors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeTypeMismatch,
		errors.ErrCodeCycleDetected,
		errors.ErrCodePortOccupied,
		errors.ErrCodeUnresolvedType,
		errors.ErrCodeTemplate:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateNode,
		errors.ErrCodeNotConnected,
		errors.ErrCodeUnknownNodeType,
		errors.ErrCodeUnknownPort,
		errors.ErrCodeUnknownNode,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeParse:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// WriteError writes err as an [ErrorBody] and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	detail := ErrorDetail{Code: errors.GetCode(err), Message: errors.UserMessage(err)}

	switch {
	case status == http.StatusRequestEntityTooLarge:
		detail.Code = errors.ErrCodeInvalidInput
		detail.Message = "request body too large"
	case status == http.StatusInternalServerError:
		detail.Code = errors.ErrCodeInternal
		detail.Message = http.StatusText(status)
	}

	var tm *errors.TypeMismatchError
	if stderrors.As(err, &tm) {
		detail.Mismatch = tm
	}

	WriteJSON(w, status, ErrorBody{Error: detail})
	return status
}

// DecodeJSON decodes a JSON request body into v, reading at most limit bytes.
// Malformed JSON is reported as INVALID_FORMAT.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

// ReadBody reads a request body of at most limit bytes.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
