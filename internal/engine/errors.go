package engine

import "fmt"

// Kind classifies an engine-level failure; it is not a Go error type of its
// own, just a discriminant the service layer maps onto HTTP-facing errors.
type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindUnknownRole  Kind = "UNKNOWN_ROLE"
	KindNoPeriods    Kind = "NO_PERIODS"
	KindInternal     Kind = "INTERNAL"
)

// Error is the engine's only error type. Builder failures are always one of
// these four kinds; the builder itself never returns one for understaffing,
// which is reported instead of raised.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
