package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query construction and execution failures.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates malformed input (empty text, bad
	// identifier, unknown format name, duplicate variable).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeMissingReference indicates an expression that must reference
	// at least one variable references none.
	ErrCodeMissingReference ErrorCode = "MISSING_REFERENCE"

	// ErrCodeUnknownVariable indicates an expression references a variable
	// that was never declared.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeNotFound indicates a named variable lookup failed.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeUnsupportedOperation indicates an aggregation was resolved
	// without a kind.
	ErrCodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"

	// ErrCodeTransport indicates the query could not be delivered or the
	// server answered with a non-200 status.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
)

// QueryError is the error type returned by builder, compiler and executor.
//
// Errors are raised by the call that detects them and are never retried.
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the offending variable, when there is one.
	Name string

	// StatusCode is the HTTP status for transport errors, 0 otherwise.
	StatusCode int

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Name != "" {
		msg = fmt.Sprintf("%s (variable=%s)", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Errorf builds a QueryError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *QueryError {
	return &QueryError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first QueryError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool { return CodeOf(err) == ErrCodeInvalidArgument }

// IsMissingReference reports whether err is a MISSING_REFERENCE error.
func IsMissingReference(err error) bool { return CodeOf(err) == ErrCodeMissingReference }

// IsUnknownVariable reports whether err is an UNKNOWN_VARIABLE error.
func IsUnknownVariable(err error) bool { return CodeOf(err) == ErrCodeUnknownVariable }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsUnsupportedOperation reports whether err is an UNSUPPORTED_OPERATION error.
func IsUnsupportedOperation(err error) bool { return CodeOf(err) == ErrCodeUnsupportedOperation }

// IsTransportError reports whether err is a TRANSPORT_ERROR.
func IsTransportError(err error) bool { return CodeOf(err) == ErrCodeTransport }
