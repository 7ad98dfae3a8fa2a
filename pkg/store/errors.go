package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is the single error type raised by this module's store helpers.
//
// Two categories exist:
//   - Invalid argument: a precondition on inputs was violated (missing
//     argument, wrong shape, empty selection path)
//   - Lookup failure: none of the requested stores or state keys exist
//
// Errors are raised before any partial work is done, except that a
// broadcast dispatch may already have reached earlier stores.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "multiplex.SelectFirst").
	Op string

	// Message is a human-readable description.
	Message string

	// Details contains diagnostic context such as configured and requested names.
	Details map[string]string
}

// ErrorCode categorizes errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a violated input precondition.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeLookupFailure indicates that nothing matched the requested names or keys.
	ErrCodeLookupFailure ErrorCode = "LOOKUP_FAILURE"
)

// Error implements the error interface.
// Details are rendered in key order so messages are stable.
func (e *Error) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: %s", e.Code, e.Message)
	if e.Op != "" {
		fmt.Fprintf(&buf, " (op=%s)", e.Op)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, " %s => %s", k, e.Details[k])
		}
	}
	return buf.String()
}

// NewInvalidArgument creates an Error for a violated precondition.
func NewInvalidArgument(op, message string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Op: op, Message: message}
}

// NewLookupFailure creates an Error for a failed lookup with diagnostic details.
func NewLookupFailure(op, message string, details map[string]string) *Error {
	return &Error{Code: ErrCodeLookupFailure, Op: op, Message: message, Details: details}
}

// IsInvalidArgument returns true if err is an invalid argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsLookupFailure returns true if err is a lookup failure.
// Uses errors.As to handle wrapped errors.
func IsLookupFailure(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeLookupFailure
	}
	return false
}

// ErrReentrantDispatch is returned when a reducer tries to dispatch.
var ErrReentrantDispatch = errors.New("reducers may not dispatch actions")
