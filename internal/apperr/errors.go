// Package apperr defines the tagged error taxonomy used across the core.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the command boundary.
type Kind int

const (
	// Unknown is the zero kind for untagged errors.
	Unknown Kind = iota
	// Validation covers bad input: unknown provider, missing API key, empty query.
	Validation
	// Fetch covers URL retrieval failures (network error, non-2xx).
	Fetch
	// Provider covers embedding/LLM RPC failures.
	Provider
	// Storage covers database errors; write paths roll back.
	Storage
	// NotFound covers absent nodes and files.
	NotFound
	// Invariant covers fatal contract breaches (vector dimension mismatch, duplicate id).
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Fetch:
		return "fetch"
	case Provider:
		return "provider"
	case Storage:
		return "storage"
	case NotFound:
		return "not_found"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// New returns a tagged error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind, preserving the chain. Returns nil for nil err.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the Kind of err, or Unknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsNotFound reports whether err is tagged NotFound.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }
