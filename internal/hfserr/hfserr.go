// Package hfserr defines the error kinds shared by the pool, node and
// façade layers.
package hfserr

import (
	"errors"
	"fmt"
)

// Kind distinguishes the handful of error conditions the core must
// surface to callers without hiding or retrying them.
type Kind int

const (
	// NotFound: a requested key is absent, or a path segment names no
	// child in its parent container.
	NotFound Kind = iota
	// InvalidStructure: an envelope or container payload fails to parse.
	InvalidStructure
	// IO: an underlying filesystem operation failed.
	IO
	// Unsupported: caller asked for an attribute or capability the
	// core does not recognize.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidStructure:
		return "invalid structure"
	case IO:
		return "io"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error pairs a Kind with a message and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, hfserr.ErrNotFound) style sentinel checks.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinel values for errors.Is comparisons where no extra context is
// needed beyond the kind.
var (
	ErrNotFound         = &Error{Kind: NotFound, Msg: "not found"}
	ErrInvalidStructure = &Error{Kind: InvalidStructure, Msg: "invalid structure"}
	ErrIO               = &Error{Kind: IO, Msg: "io"}
	ErrUnsupported      = &Error{Kind: Unsupported, Msg: "unsupported"}
)

// Of reports the Kind of err and true, or false if err does not carry
// one of ours.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
