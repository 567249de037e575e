// Package errors provides the structured error taxonomy shared by the
// goscf packages. Errors carry a Code identifying the failure class, an
// optional wrapped cause, and free-form context fields.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a known failure class.
type Code int

const (
	Unknown Code = iota

	// InvalidBasisSpec marks unusable user input: an unknown basis-set
	// name, an element with no entry in the set, or malformed shell data.
	InvalidBasisSpec

	// IntegralOverflow marks a non-finite intermediate inside an integral
	// recurrence. The calculation is aborted; results would be meaningless.
	IntegralOverflow

	// SingularExtrapolation marks a numerically singular DIIS system.
	// Recoverable: the driver falls back to the unextrapolated Fock matrix.
	SingularExtrapolation

	// InvalidInput marks malformed geometry or configuration.
	InvalidInput

	// Canceled marks an externally aborted calculation.
	Canceled
)

func (c Code) String() string {
	switch c {
	case InvalidBasisSpec:
		return "InvalidBasisSpec"
	case IntegralOverflow:
		return "IntegralOverflow"
	case SingularExtrapolation:
		return "SingularExtrapolation"
	case InvalidInput:
		return "InvalidInput"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Fields carries structured context about an error.
type Fields map[string]interface{}

// Error is a coded error with an optional cause and context fields.
type Error struct {
	code     Code
	message  string
	original error
	fields   Fields
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.message)

	if e.original != nil {
		b.WriteString(": ")
		b.WriteString(e.original.Error())
	}

	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%v ", k, e.fields[k])
		}
		b.WriteString("]")
	}

	return strings.TrimSpace(b.String())
}

func (e *Error) Unwrap() error { return e.original }

func (e *Error) Code() Code { return e.code }

// Field returns a context field, or nil when absent.
func (e *Error) Field(key string) interface{} {
	if e.fields == nil {
		return nil
	}
	return e.fields[key]
}

// New creates an error with a code and message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Errorf creates an error with a code and a formatted message.
func Errorf(code Code, format string, args ...interface{}) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message. Returns nil when
// err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, original: err}
}

// WithFields attaches structured context to an error. Existing fields on a
// coded error are preserved; new keys win on collision.
func WithFields(err error, fields Fields) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok {
		merged := make(Fields, len(e.fields)+len(fields))
		for k, v := range e.fields {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		return &Error{code: e.code, message: e.message, original: e.original, fields: merged}
	}

	return &Error{code: Unknown, message: err.Error(), original: err, fields: fields}
}

// CodeOf extracts the code from an error chain, or Unknown if no coded
// error is present.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.code
	}
	return Unknown
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
