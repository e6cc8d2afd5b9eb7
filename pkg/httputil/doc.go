// Package httputil provides HTTP response helpers for the shadergraph service.
//
// # Overview
//
// Handlers answer with JSON. [WriteJSON] writes a value with a status code and
// [WriteError] turns any error into a JSON error body whose HTTP status is
// derived from the error code (see [StatusFor]):
//
//	{"error": {"code": "TYPE_MISMATCH", "message": "type mismatch at ..."}}
//
// # Status Mapping
//
// Graph invariant violations (TYPE_MISMATCH, CYCLE_DETECTED, PORT_OCCUPIED,
// UNRESOLVED_TYPE) are 422 Unprocessable Entity: the request was well formed
// but describes a graph that cannot be built. Missing resources are 404 and
// malformed input is 400. Errors without a code are 500 and their message is
// not sent to the client.
package httputil
