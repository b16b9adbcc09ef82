// Package apperr defines the small set of failure kinds the intake pipeline
// reports to its callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Unclassified is returned by KindOf for errors that carry no kind.
	Unclassified Kind = iota
	InvalidInput
	DocumentReadError
	ClassificationUnavailable
	StoreWriteError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case DocumentReadError:
		return "document_read_error"
	case ClassificationUnavailable:
		return "classification_unavailable"
	case StoreWriteError:
		return "store_write_error"
	default:
		return "unclassified"
	}
}

// Error is a failure tagged with a Kind. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with the given kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a kinded error from a format string.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or Unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unclassified
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
