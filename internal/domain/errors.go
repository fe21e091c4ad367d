package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// TransportError represents a network-level failure (DNS, connect, timeout).
// Always safe to retry: the request may never have reached the exchange.
type TransportError struct {
	Op  string // Operation that failed (e.g., "dial", "send", "read")
	Err error  // Underlying error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) IsRetriable() bool { return true }

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps a network failure for an operation
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// HTTPStatusError represents a non-2xx response whose body was not a
// well-formed envelope. Retriable only for server-side or throttling statuses.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

func (e *HTTPStatusError) IsRetriable() bool {
	return e.Status >= 500 || e.Status == 429
}

// ExchangeError represents a well-formed envelope reporting failure.
// The message is preserved verbatim so callers can distinguish retryable
// causes (rate limit) from fatal ones (invalid parameters, insufficient margin).
type ExchangeError struct {
	Message string
	Status  int // HTTP status the envelope arrived with
}

func (e *ExchangeError) Error() string {
	return "exchange error: " + e.Message
}

func (e *ExchangeError) IsRetriable() bool { return false }

// ValidationError represents a locally detected precondition violation.
// Never retriable: the same input will always fail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error [" + e.Field + "]: " + e.Reason
}

func (e *ValidationError) IsRetriable() bool { return false }

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool { return false }

func (e *ConfigError) Unwrap() error { return e.Err }
