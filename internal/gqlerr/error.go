// Package gqlerr defines the GraphqlError wire type and the error-kind
// taxonomy used across the execution core (spec §7).
package gqlerr

import "fmt"

// Code is an extensions.code value recognized by clients.
type Code string

const (
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeInaccessibleField   Code = "INACCESSIBLE_FIELD"
	CodeInternalServerError Code = "InternalServerError"
)

// Location mirrors a GraphQL source location (line/column, 1-indexed).
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is the wire representation of a single GraphQL error. Field order
// matches what subgraphs and clients expect: message, locations, path,
// extensions.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// New creates an Error with only a message set.
func New(message string) *Error {
	return &Error{Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// WithPath sets e's path in place and returns e.
func (e *Error) WithPath(path []any) *Error {
	e.Path = path
	return e
}

// WithLocations sets e's locations in place and returns e.
func (e *Error) WithLocations(locs []Location) *Error {
	e.Locations = locs
	return e
}

// WithExtension sets a single extensions entry, allocating the map if needed.
func (e *Error) WithExtension(key string, value any) *Error {
	if e.Extensions == nil {
		e.Extensions = make(map[string]any, 1)
	}
	e.Extensions[key] = value
	return e
}

// WithCode sets extensions.code.
func (e *Error) WithCode(code Code) *Error {
	return e.WithExtension("code", string(code))
}

// InternalServerError builds the single generic error the core is allowed to
// surface for an internal invariant violation. It never leaks diagnostics
// (spec §7.4) — callers must not attach the underlying cause as a message.
func InternalServerError() *Error {
	return New("Internal server error").WithCode(CodeInternalServerError)
}

// Error implements the error interface so *Error can travel through normal
// Go error-handling paths before being appended to a response.
func (e *Error) Error() string {
	return e.Message
}
