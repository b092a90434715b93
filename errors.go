package chatreply

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrAPI indicates the provider answered with a non-2xx status or a malformed payload.
	ErrAPI = errors.New("chatreply: provider API error")

	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("chatreply: network error")

	// ErrQuotaExhausted indicates the account behind the credentials has no quota left.
	ErrQuotaExhausted = errors.New("chatreply: quota exhausted")

	// ErrUnknownProvider indicates no provider is registered for the requested ID.
	ErrUnknownProvider = errors.New("chatreply: unknown provider")

	// ErrInvalidAPIKey indicates the API key is missing or was rejected.
	ErrInvalidAPIKey = errors.New("chatreply: invalid API key")
)

// APIError represents a non-2xx response or an unusable payload from a provider.
type APIError struct {
	Provider   ProviderID // The provider name
	StatusCode int        // HTTP status code (0 for malformed payloads on a 2xx stream)
	Code       string     // Provider-specific error code
	Type       string     // Provider-specific error type
	Message    string     // Error message from provider
	Raw        []byte     // Raw response body (capped)
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider.String())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " error (status %d)", e.StatusCode)
	} else {
		b.WriteString(" error")
	}

	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.StatusCode > 0 {
		msg = http.StatusText(e.StatusCode)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// NetworkError represents a transport-level failure, tagged with the origin
// (scheme://host) the request was sent to.
type NetworkError struct {
	Provider ProviderID
	Origin   string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error (origin %s): %v", e.Provider, e.Origin, e.Err)
}

// Is reports ErrNetwork so callers can match without caring about the cause
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// QuotaExhaustedError is returned when a provider signals the distinguished
// quota-exhaustion status. It is never retried.
type QuotaExhaustedError struct {
	Provider   ProviderID
	StatusCode int
	Message    string
}

func (e *QuotaExhaustedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s quota exhausted (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s quota exhausted (status %d)", e.Provider, e.StatusCode)
}

func (e *QuotaExhaustedError) Unwrap() error {
	return ErrQuotaExhausted
}

// NewMalformedPayloadError wraps a decoding failure of a provider payload.
func NewMalformedPayloadError(provider ProviderID, payload string, err error) *APIError {
	return &APIError{
		Provider: provider,
		Message:  fmt.Sprintf("malformed provider payload: %v", err),
		Raw:      []byte(payload),
	}
}

// IsRetryable checks if an error is worth an immediate re-attempt.
// Network errors and 408/429/5xx API errors are retryable; quota exhaustion never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if IsQuotaExhausted(err) {
		return false
	}

	if errors.Is(err, ErrNetwork) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return IsRetryableStatus(apiErr.StatusCode)
	}

	return false
}

// IsRetryableStatus reports whether an HTTP status is considered transient
func IsRetryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// IsQuotaExhausted checks if an error is a quota exhaustion signal
func IsQuotaExhausted(err error) bool {
	return errors.Is(err, ErrQuotaExhausted)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// HTTP 401/403 indicate auth issues
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}

	return false
}
