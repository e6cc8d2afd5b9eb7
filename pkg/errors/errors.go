// Package errors provides structured error types for shadergraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the compiler, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Graph errors describe why a mutation was refused:
//   - PORT_OCCUPIED: the target input already has an incoming connection
//   - CYCLE_DETECTED: the connection would close a directed cycle
//   - TYPE_MISMATCH: a fixed type or an already bound generic type conflicts
//
// Lookup errors (UNKNOWN_*) indicate a registry or graph miss, and PARSE_ERROR is
// returned by the strict declaration parser.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePortOccupied, "input %q of node %q is already occupied", port, id)
//	if errors.Is(err, errors.ErrCodePortOccupied) {
//	    // Handle refused connection
//	}
//
//	var tm *errors.TypeMismatchError
//	if stderrors.As(err, &tm) {
//	    fmt.Println(tm.Expected, tm.Actual)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph mutation errors
	ErrCodePortOccupied   Code = "PORT_OCCUPIED"
	ErrCodeCycleDetected  Code = "CYCLE_DETECTED"
	ErrCodeTypeMismatch   Code = "TYPE_MISMATCH"
	ErrCodeDuplicateNode  Code = "DUPLICATE_NODE"
	ErrCodeNotConnected   Code = "NOT_CONNECTED"
	ErrCodeUnresolvedType Code = "UNRESOLVED_TYPE"

	// Lookup errors
	ErrCodeUnknownNodeType Code = "UNKNOWN_NODE_TYPE"
	ErrCodeUnknownPort     Code = "UNKNOWN_PORT"
	ErrCodeUnknownNode     Code = "UNKNOWN_NODE"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeParse         Code = "PARSE_ERROR"
	ErrCodeTemplate      Code = "TEMPLATE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// TypeMismatchError describes a conflict found while propagating concrete types
// through the graph. Variable is empty when the conflicting port has a fixed type.
type TypeMismatchError struct {
	Node     string `json:"node"`               // Node where the conflict was detected
	Port     string `json:"port"`               // Input port of that node
	Variable string `json:"variable,omitempty"` // Generic type variable, if any
	Expected string `json:"expected"`           // Type already required by the port or binding
	Actual   string `json:"actual"`             // Type arriving over the connection
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("could not match %s with generic type %s of node %q (already resolved to %s)",
			e.Actual, e.Variable, e.Node, e.Expected)
	}
	return fmt.Sprintf("could not match type %s with type %s of input %q on node %q",
		e.Actual, e.Expected, e.Port, e.Node)
}

// Code returns the error code for this error type.
func (e *TypeMismatchError) Code() Code {
	return ErrCodeTypeMismatch
}

// TypeMismatch wraps a TypeMismatchError in an *Error with ErrCodeTypeMismatch.
func TypeMismatch(tm *TypeMismatchError) *Error {
	return Wrap(ErrCodeTypeMismatch, tm, "type mismatch at %s.%s", tm.Node, tm.Port)
}

// ParseError carries the position of a rejected declaration line.
type ParseError struct {
	Line   int    // 1-based line number
	Text   string // Offending line
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Code returns the error code for this error type.
func (e *ParseError) Code() Code {
	return ErrCodeParse
}
