package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for common provider failures.
var (
	// Context/Token errors
	ErrContextLengthExceeded = errors.New("context length exceeded")

	// Safety/Content errors
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// Rate limiting errors
	ErrRateLimit = errors.New("rate limit exceeded")

	// Authentication errors
	ErrAuthentication = errors.New("authentication failed")

	// Network errors
	ErrNetwork            = errors.New("network error")
	ErrTimeout            = errors.New("request timeout")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyResponse  = errors.New("empty response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is match a ProviderError against the sentinel for its code.
func (e *ProviderError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeContextLength:
		return target == ErrContextLengthExceeded
	case ErrorCodeContentBlocked:
		return target == ErrContentBlocked
	case ErrorCodeRateLimit:
		return target == ErrRateLimit
	case ErrorCodeAuth:
		return target == ErrAuthentication
	case ErrorCodeNetwork:
		return target == ErrNetwork
	case ErrorCodeTimeout:
		return target == ErrTimeout
	case ErrorCodeUnavailable:
		return target == ErrServiceUnavailable
	case ErrorCodeInvalidRequest:
		return target == ErrInvalidRequest
	case ErrorCodeEmptyResponse:
		return target == ErrEmptyResponse
	}
	return false
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// GetRetryAfter returns the retry-after duration if present.
func GetRetryAfter(err error) *time.Duration {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.RetryAfter
	}
	return nil
}

// HTTPStatusError maps an HTTP status code returned by a provider API to a ProviderError.
// Adapters call it after extracting the status from their SDK's error type.
func HTTPStatusError(status int, message string, underlying error) *ProviderError {
	switch {
	case status == 401 || status == 403:
		return &ProviderError{Code: ErrorCodeAuth, Message: "authentication failed", Underlying: underlying}
	case status == 429:
		return &ProviderError{Code: ErrorCodeRateLimit, Message: "rate limit exceeded", Underlying: underlying, Retryable: true}
	case status == 400 || status == 404 || status == 422:
		return &ProviderError{Code: ErrorCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", message), Underlying: underlying}
	case status == 408 || status == 504:
		return &ProviderError{Code: ErrorCodeTimeout, Message: "request timeout", Underlying: underlying, Retryable: true}
	case status >= 500:
		return &ProviderError{Code: ErrorCodeUnavailable, Message: "service unavailable", Underlying: underlying, Retryable: true}
	default:
		return &ProviderError{Code: ErrorCodeNetwork, Message: fmt.Sprintf("API error: %s", message), Underlying: underlying, Retryable: true}
	}
}

// TransportError maps a failure that carried no HTTP status. Context errors stay
// reachable through errors.Is so callers can tell a deadline from a cancellation.
func TransportError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{Code: ErrorCodeTimeout, Message: "request timeout", Underlying: err, Retryable: true}
	case errors.Is(err, context.Canceled):
		return &ProviderError{Code: ErrorCodeNetwork, Message: "request cancelled", Underlying: err}
	default:
		return &ProviderError{Code: ErrorCodeNetwork, Message: "network error", Underlying: err, Retryable: true}
	}
}

// WithRetryAfter records the server's Retry-After hint, in seconds or as an HTTP date.
// Unparseable or missing values leave the error unchanged.
func (e *ProviderError) WithRetryAfter(resp *http.Response, now time.Time) *ProviderError {
	if resp == nil {
		return e
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return e
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
	} else {
		return e
	}
	if d < 0 {
		d = 0
	}
	e.RetryAfter = &d
	return e
}
