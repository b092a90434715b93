// Package transport holds the HTTP plumbing shared by every HTTP provider:
// a JSON POST helper with bounded immediate retries and an SSE decoder.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/haowjy/chatreply-go"
)

// DefaultMaxRetries is the number of re-attempts after the first try
const DefaultMaxRetries = 3

// maxErrorBodyBytes caps how much of an error response body is read
const maxErrorBodyBytes = 1 << 20

const contentTypeJSON = "application/json"

// ErrorHook inspects a non-2xx response before the generic error decoding.
// Returning a non-nil error ends the retry loop with that error.
type ErrorHook func(provider chatreply.ProviderID, statusCode int, header http.Header, body []byte) error

// Config configures a Client.
type Config struct {
	Provider chatreply.ProviderID

	// HTTPClient defaults to http.DefaultClient. Streaming responses must not be
	// bounded by a client-wide Timeout, so cancellation goes through the context.
	HTTPClient *http.Client

	// MaxRetries is the number of re-attempts after the first try.
	// Zero means DefaultMaxRetries; negative disables retries.
	MaxRetries int
}

// Request describes one logical POST.
type Request struct {
	URL     string
	Headers http.Header

	// Body is marshalled to JSON once and replayed on every attempt
	Body any

	// Accept sets the Accept header when non-empty
	Accept string

	ErrorHooks []ErrorHook
}

// Client sends JSON POSTs for a single provider.
type Client struct {
	provider   chatreply.ProviderID
	httpClient *http.Client
	maxRetries int
}

// New creates a client
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = DefaultMaxRetries
	case retries < 0:
		retries = 0
	}

	return &Client{
		provider:   cfg.Provider,
		httpClient: hc,
		maxRetries: retries,
	}
}

// Provider returns the provider this client sends for
func (c *Client) Provider() chatreply.ProviderID { return c.provider }

// MaxRetries returns the configured retry bound
func (c *Client) MaxRetries() int { return c.maxRetries }

// Post sends req and returns the first 2xx response together with the number
// of attempts made. The caller owns the response body.
//
// Network failures and 408/429/5xx responses are retried immediately, up to
// MaxRetries times. Any other status, or an error returned by an ErrorHook,
// ends the loop at once. Context cancellation returns the context error.
func (c *Client) Post(ctx context.Context, req Request) (*http.Response, int, error) {
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}

	origin := Origin(req.URL)

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts++

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
		if err != nil {
			return nil, attempts, fmt.Errorf("%s: new request: %w", c.provider, err)
		}
		applyHeaders(httpReq, req)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			lastErr = &chatreply.NetworkError{Provider: c.provider, Origin: origin, Err: err}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, attempts, nil
		}

		respBytes, rerr := readLimited(resp.Body, maxErrorBodyBytes)
		resp.Body.Close()
		if rerr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			respBytes = nil
		}

		if hookErr := runHooks(req.ErrorHooks, c.provider, resp.StatusCode, resp.Header, respBytes); hookErr != nil {
			return nil, attempts, hookErr
		}

		lastErr = ParseError(c.provider, resp.StatusCode, respBytes)
		if !chatreply.IsRetryable(lastErr) {
			return nil, attempts, lastErr
		}
	}

	return nil, attempts, lastErr
}

func applyHeaders(httpReq *http.Request, req Request) {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeJSON)
	for k, vs := range req.Headers {
		h[k] = slices.Clone(vs)
	}
	if strings.TrimSpace(req.Accept) != "" {
		h.Set("Accept", req.Accept)
	}
	httpReq.Header = h
}

func runHooks(hooks []ErrorHook, provider chatreply.ProviderID, status int, header http.Header, body []byte) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(provider, status, header, body); err != nil {
			return err
		}
	}
	return nil
}

type errorResponse struct {
	Error struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Param   json.RawMessage `json:"param"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// ParseError converts a non-2xx body into an APIError, using the
// OpenAI-style {"error": {...}} envelope when present.
func ParseError(provider chatreply.ProviderID, statusCode int, body []byte) *chatreply.APIError {
	apiErr := &chatreply.APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Raw:        slices.Clone(body),
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && strings.TrimSpace(er.Error.Message) != "" {
		apiErr.Message = strings.TrimSpace(er.Error.Message)
		apiErr.Type = strings.TrimSpace(er.Error.Type)
		apiErr.Code = rawCode(er.Error.Code)
		return apiErr
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	apiErr.Message = msg
	return apiErr
}

// rawCode accepts codes sent as either JSON strings or numbers
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// Origin returns scheme://host of rawURL, or rawURL itself when it does not parse
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

func readLimited(r io.Reader, limit int) ([]byte, error) {
	return io.ReadAll(&io.LimitedReader{R: r, N: int64(limit)})
}
