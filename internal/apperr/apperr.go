// Package apperr defines the error taxonomy surfaced to callers of the
// compliance engine. Repositories return infrastructure sentinels; services
// translate them into these kinds with a message naming the entity involved.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindInvalidTransition
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-safe message, and an optional cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by code so wrapped copies compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

var (
	// ErrNotAuthenticated is returned when no actor accompanies a state-changing call.
	ErrNotAuthenticated = &Error{Kind: KindAuthorization, Code: "NOT_AUTHENTICATED", Message: "actor is required"}
	// ErrForbidden is returned when the actor lacks the reviewer capability.
	ErrForbidden = &Error{Kind: KindAuthorization, Code: "FORBIDDEN", Message: "actor lacks reviewer role"}
	// ErrNoDistrict is returned when a reviewer is not bound to a district.
	ErrNoDistrict = &Error{Kind: KindAuthorization, Code: "ACTOR_DISTRICT_REQUIRED", Message: "reviewer has no district"}
	// ErrUnknownAction is returned for review actions outside the fixed set.
	ErrUnknownAction = &Error{Kind: KindValidation, Code: "UNKNOWN_ACTION", Message: "unknown review action"}
)

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity by kind and id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// InvalidTransition names the entity, its current status, and the attempted action.
func InvalidTransition(entity, id, current, action string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot %s %s %s: current status is %s", action, entity, id, current),
	}
}

// OutsideDistrict reports an entity the actor's district does not own.
func OutsideDistrict(entity, id string) *Error {
	return &Error{
		Kind:    KindAuthorization,
		Code:    "OUT_OF_DISTRICT",
		Message: fmt.Sprintf("%s %s belongs to another district", entity, id),
	}
}

// Conflict reports that a concurrent writer kept winning after all retries.
func Conflict(entity, id string, err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: fmt.Sprintf("%s %s was modified concurrently; retry the request", entity, id),
		Err:     err,
	}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of the first *Error in the chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "INTERNAL_ERROR"
}

// MessageOf returns the caller-safe message, never the wrapped cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
