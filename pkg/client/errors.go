package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrClientClosed is returned for requests made after shutdown began.
	// It is never cached and never reported to the exception handler.
	ErrClientClosed = errors.New("client closed")

	// ErrShutdownTimeout is returned by Close when in-flight requests had to be
	// cancelled because the shutdown timeout elapsed.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents payloads that could not be decoded.
	ErrorClassParse ErrorClass = "parse"

	// ErrorClassPanic represents fetch functions that panicked.
	ErrorClassPanic ErrorClass = "panic"

	// ErrorClassUnknown is used for errors from custom fetch functions.
	ErrorClassUnknown ErrorClass = "unknown"
)

// TransportError is returned when the HTTP round trip itself fails.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s: unexpected status %d (%s)", e.Endpoint, e.StatusCode, e.Status)
}

// Class returns ErrorClassClient for 4xx and ErrorClassServer otherwise.
func (e *StatusError) Class() ErrorClass {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return ErrorClassClient
	}
	return ErrorClassServer
}

// ParseError is returned when a response body cannot be decoded.
type ParseError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking fetch function.
type PanicError struct {
	Key   string
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("fetch %s panicked: %v", e.Key, e.Value)
}

// Classify categorizes an error for observability.
func Classify(err error) ErrorClass {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		parseErr     *ParseError
		panicErr     *PanicError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return statusErr.Class()
	case errors.As(err, &transportErr):
		return ErrorClassNetwork
	case errors.As(err, &parseErr):
		return ErrorClassParse
	case errors.As(err, &panicErr):
		return ErrorClassPanic
	default:
		return ErrorClassUnknown
	}
}
