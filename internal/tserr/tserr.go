// Package tserr defines the error kinds raised by the timeseries engine.
//
// All engine errors abort the current command synchronously; there is no
// partial in-memory rollback because the collaborator executes each command
// as a single atomic script (spec.md §7).
package tserr

import (
	"errors"
	"fmt"
)

// Kind classifies why a command failed.
type Kind int

const (
	// KindArgument covers missing/wrong-shape arguments, non-even field
	// lists, non-positive LIMIT, malformed ids, unknown aggregation kinds,
	// malformed filter expressions, and conflicting options.
	KindArgument Kind = iota
	// KindLookup covers an unknown command name.
	KindLookup
	// KindCollaborator covers the underlying store rejecting a read or
	// write (e.g. a regressive id on append); propagated verbatim.
	KindCollaborator
	// KindInvariant covers storage-corruption conditions such as a point
	// lookup returning more than one entry for a supposedly unique id.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "ArgumentError"
	case KindLookup:
		return "LookupError"
	case KindCollaborator:
		return "CollaboratorError"
	case KindInvariant:
		return "InvariantViolation"
	default:
		return "Error"
	}
}

// Error is the engine's error type: a Kind plus a human-readable message and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err (or something it wraps) is a tserr.Error of kind k.
func Is(err error, k Kind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == k
}

func Argument(format string, args ...interface{}) error {
	return &Error{Kind: KindArgument, Message: fmt.Sprintf(format, args...)}
}

func Lookup(format string, args ...interface{}) error {
	return &Error{Kind: KindLookup, Message: fmt.Sprintf(format, args...)}
}

func Collaborator(cause error, format string, args ...interface{}) error {
	return &Error{Kind: KindCollaborator, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Invariant(format string, args ...interface{}) error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}
