// Package errors provides the typed error used across the CRM Twitter gateway.
// It includes error categorization, HTTP status capture, stack trace capture and wrapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of an error.
type ErrorType string

// Error types for the failure classes the gateway distinguishes.
const (
	// TypeClient is a 4xx response from Twitter.
	TypeClient ErrorType = "client"
	// TypeServer is a 5xx response from Twitter.
	TypeServer ErrorType = "server"
	// TypeTransport is a failure to get any response (network, timeout, cancellation).
	TypeTransport ErrorType = "transport"
	// TypeDecode is a response body that is not the expected JSON.
	TypeDecode ErrorType = "decode"
	// TypeValidation is an input rejected before any request is issued.
	TypeValidation ErrorType = "validation"
	// TypeConfig is missing or invalid configuration.
	TypeConfig ErrorType = "config"
)

// Error represents a custom error with type information and stack trace.
type Error struct {
	Type       ErrorType // The category of the error
	Message    string    // A descriptive message about the error
	StatusCode int       // HTTP status returned by the remote side, 0 if none
	Err        error     // The underlying error, if any
	Stack      string    // The stack trace at the time of error creation
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(" (status %d)", e.StatusCode))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the given type, message, and optional underlying error.
// It automatically captures the stack trace at the point of creation.
func New(errType ErrorType, message string, err error) *Error {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	return &Error{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   string(stack[:n]),
	}
}

// NewStatus creates an Error for an HTTP response, choosing TypeClient for 4xx
// and TypeServer for everything else.
func NewStatus(statusCode int, message string) *Error {
	errType := TypeServer
	if statusCode >= 400 && statusCode < 500 {
		errType = TypeClient
	}
	e := New(errType, message, nil)
	e.StatusCode = statusCode
	return e
}

// Wrap wraps an existing error with additional context and type information.
// It preserves the original error's stack trace and status if it's also an *Error.
func Wrap(err error, errType ErrorType, message string) *Error {
	var originalErr *Error
	if stderrors.As(err, &originalErr) {
		return &Error{
			Type:       errType,
			Message:    message,
			StatusCode: originalErr.StatusCode,
			Err:        originalErr,
			Stack:      originalErr.Stack,
		}
	}
	return New(errType, message, err)
}

// Is implements error matching for wrapped errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// TypeOf returns the type of the outermost *Error in err's chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var e *Error
	if stderrors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode, true
	}
	return 0, false
}

// StackOf returns the captured stack of err, or "" when err is not an *Error.
func StackOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Stack
	}
	return ""
}
