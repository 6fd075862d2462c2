package errors

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	// ErrorTypePrecondition marks failures where the commit attempt cannot
	// safely proceed at all. Never retried.
	ErrorTypePrecondition ErrorType = "PRECONDITION"
	// ErrorTypeTransport marks remote call failures surfaced unmodified.
	ErrorTypeTransport ErrorType = "TRANSPORT"
)

var (
	// ErrTreeTruncated is returned when the remote could not deliver the
	// full recursive tree. A partial tree cannot yield a complete diff.
	ErrTreeTruncated = &Error{
		Type:    ErrorTypePrecondition,
		Message: "tree listing truncated by remote",
	}

	// ErrNoStartPoint is returned when the target branch does not exist
	// and no base branch is configured to create it from.
	ErrNoStartPoint = &Error{
		Type:    ErrorTypePrecondition,
		Message: "target branch does not exist and no base branch is configured",
	}
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Transport wraps a remote call failure so callers can classify it.
func Transport(op string, err error) error {
	return fmt.Errorf("%s: %w", op, &wrapped{typ: ErrorTypeTransport, err: err})
}

type wrapped struct {
	typ ErrorType
	err error
}

func (w *wrapped) Error() string { return w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// IsPrecondition reports whether err is a fatal precondition failure.
func IsPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypePrecondition
}

// IsTransport reports whether err carries a remote call failure.
func IsTransport(err error) bool {
	var w *wrapped
	return errors.As(err, &w) && w.typ == ErrorTypeTransport
}
