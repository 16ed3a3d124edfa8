// Package domainerrors defines the coded error type services return to
// transport layers. Codes, not error strings, decide HTTP status mapping.
package domainerrors

import "errors"

// Code classifies a domain error for transport mapping and caller branching.
type Code string

const (
	// CodeBadRequest marks malformed or semantically invalid requests.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks a field-level validation failure at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated principal lacking the required role.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an operation refused by an integrity constraint,
	// e.g. issuing a second receipt or deleting a receipted delivery.
	CodeConflict Code = "conflict"
	// CodeInternal marks infrastructure failures. Detail is never exposed
	// to HTTP clients.
	CodeInternal Code = "internal_error"
)

// Error carries a code plus a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code == code
	}
	return false
}

// Is is a readability alias for HasCode at call sites that branch on codes.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// anything that is not a domain error.
func CodeOf(err error) Code {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return CodeInternal
}
