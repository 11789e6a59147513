// Package domainerrors provides coded errors shared across services and handlers.
//
// Services construct these at the point where an infrastructure fact (see
// pkg/platform/sentinel) or a rule violation becomes a caller-visible outcome.
// Handlers map codes onto HTTP statuses; nothing below the handler layer should
// know about HTTP.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and retry decisions.
type Code string

const (
	// CodeBadRequest covers malformed or undecodable input.
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers structurally valid input with bad values.
	CodeValidation Code = "validation"
	// CodeConfiguration covers malformed rules or policies discovered at
	// evaluation time (e.g. a redirect rule without a target). Not retryable.
	CodeConfiguration Code = "configuration"
	// CodeInvalidTransition covers attempted illegal state machine changes.
	// The entity is left unchanged. Not retryable.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeLimitExceeded covers quota breaches such as the per-tenant rule
	// ceiling. Surfaced distinctly from generic validation.
	CodeLimitExceeded Code = "limit_exceeded"
	// CodeConflict covers concurrent mutation conflicts. Retryable by
	// re-reading current state and re-evaluating, never by blind resubmission.
	CodeConflict Code = "conflict"
	// CodeNotFound covers missing entities.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized covers missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeUnavailable covers unreachable collaborators (repository, cache,
	// broker). Callers retry with backoff; enforcement paths fail closed and
	// never substitute a default decision.
	CodeUnavailable Code = "unavailable"
	// CodeInternal covers unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As inspection.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that read like
// dErrors.Is(err, dErrors.CodeNotFound).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so the transport layer always has something to map.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
