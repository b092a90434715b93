package chatreply

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Provider: ProviderOpenAI, StatusCode: 401, Message: "Incorrect API key", Code: "invalid_api_key"}
	want := "openai error (status 401): Incorrect API key (invalid_api_key)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &APIError{Provider: ProviderClaude, StatusCode: 503}
	if got, want := bare.Error(), "claude error (status 503): Service Unavailable"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorKinds(t *testing.T) {
	apiErr := error(&APIError{Provider: ProviderOpenAI, StatusCode: 400})
	netErr := error(&NetworkError{Provider: ProviderAzure, Origin: "https://x.openai.azure.com", Err: io.ErrUnexpectedEOF})
	quotaErr := error(&QuotaExhaustedError{Provider: ProviderChatboxAI, StatusCode: 402})

	if !errors.Is(apiErr, ErrAPI) {
		t.Error("APIError should match ErrAPI")
	}
	if !errors.Is(netErr, ErrNetwork) {
		t.Error("NetworkError should match ErrNetwork")
	}
	if !errors.Is(netErr, io.ErrUnexpectedEOF) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", quotaErr), ErrQuotaExhausted) {
		t.Error("wrapped QuotaExhaustedError should match ErrQuotaExhausted")
	}
	if errors.Is(quotaErr, ErrAPI) {
		t.Error("quota exhaustion is its own kind")
	}

	var ne *NetworkError
	if !errors.As(netErr, &ne) || ne.Origin != "https://x.openai.azure.com" {
		t.Error("NetworkError should carry its origin")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", &NetworkError{Err: io.EOF}, true},
		{"rate limited", &APIError{StatusCode: http.StatusTooManyRequests}, true},
		{"request timeout", &APIError{StatusCode: http.StatusRequestTimeout}, true},
		{"server error", &APIError{StatusCode: http.StatusBadGateway}, true},
		{"bad request", &APIError{StatusCode: http.StatusBadRequest}, false},
		{"unauthorized", &APIError{StatusCode: http.StatusUnauthorized}, false},
		{"malformed payload", NewMalformedPayloadError(ProviderOpenAI, "{", io.ErrUnexpectedEOF), false},
		{"quota", &QuotaExhaustedError{StatusCode: 402}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(&APIError{StatusCode: http.StatusUnauthorized}) {
		t.Error("401 should be an auth error")
	}
	if !IsAuthError(fmt.Errorf("x: %w", ErrInvalidAPIKey)) {
		t.Error("ErrInvalidAPIKey should be an auth error")
	}
	if IsAuthError(&APIError{StatusCode: http.StatusInternalServerError}) {
		t.Error("500 is not an auth error")
	}
}
