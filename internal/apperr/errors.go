// Package apperr defines the closed set of error kinds surfaced across the
// room/command/scheduler boundary, replacing ad-hoc sentinel errors with one
// taggable type so handlers at the transport edge can map errors to wire
// codes without type-switching on package-private types.
package apperr

import "fmt"

// Kind is a closed enumeration of error categories. Never add a new Kind
// without also handling it at every transport boundary that switches on it.
type Kind string

const (
	KindInvalidInput Kind = "InvalidInput"
	KindAuthFailed    Kind = "AuthFailed"
	KindNotFound      Kind = "NotFound"
	KindForbidden     Kind = "Forbidden"
	KindConflict      Kind = "Conflict"
	KindUnaffordable  Kind = "Unaffordable"
	KindGameEnded     Kind = "GameEnded"
	KindTransient     Kind = "Transient"
	KindFatal         Kind = "Fatal"
)

// GameError is the single error type carried across package boundaries.
// Code is an optional machine-readable token (e.g. "REFOUND_DISABLED") for
// cases where Kind alone is too coarse for the client to branch on.
type GameError struct {
	Kind    Kind
	Message string
	Code    string
}

func (e *GameError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the caller may reasonably retry the operation
// that produced this error.
func (e *GameError) Retryable() bool {
	return e.Kind == KindTransient
}

func New(kind Kind, message string) *GameError {
	return &GameError{Kind: kind, Message: message}
}

func Coded(kind Kind, code, message string) *GameError {
	return &GameError{Kind: kind, Message: message, Code: code}
}

func InvalidInput(format string, args ...any) *GameError {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

func AuthFailed(format string, args ...any) *GameError {
	return New(KindAuthFailed, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *GameError {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *GameError {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *GameError {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// ConflictCode is Conflict with an explicit machine-readable code, used for
// cases like REFOUND_DISABLED that the client must branch on.
func ConflictCode(code, format string, args ...any) *GameError {
	return Coded(KindConflict, code, fmt.Sprintf(format, args...))
}

func Unaffordable(format string, args ...any) *GameError {
	return New(KindUnaffordable, fmt.Sprintf(format, args...))
}

func GameEnded(format string, args ...any) *GameError {
	return New(KindGameEnded, fmt.Sprintf(format, args...))
}

func Transient(format string, args ...any) *GameError {
	return New(KindTransient, fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...any) *GameError {
	return New(KindFatal, fmt.Sprintf(format, args...))
}

// As extracts a *GameError from err, if present.
func As(err error) (*GameError, bool) {
	ge, ok := err.(*GameError)
	return ge, ok
}
