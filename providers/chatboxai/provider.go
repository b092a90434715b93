package chatboxai

import (
	"context"
	"net/http"
	"strings"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/openaicompat"
	"github.com/haowjy/chatreply-go/internal/transport"
)

// DefaultHost is used when Settings.Host is empty
const DefaultHost = "https://chatboxai.app"

// QuotaExhaustedStatus is the status ChatboxAI answers with once the license has no quota left
const QuotaExhaustedStatus = http.StatusPaymentRequired

const chatPath = "/api/ai/chat"

// Config configures the ChatboxAI provider.
type Config struct {
	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// Provider implements the chatreply.Provider interface for the hosted ChatboxAI service.
//
// Settings mapping:
//   - APIKey: the license key, sent verbatim as the Authorization header
//   - InstanceID: the installation ID, sent as the Instance-Id header
type Provider struct {
	client *transport.Client
}

// NewProvider creates a new ChatboxAI provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		client: transport.New(transport.Config{
			Provider:   chatreply.ProviderChatboxAI,
			HTTPClient: cfg.HTTPClient,
			MaxRetries: cfg.MaxRetries,
		}),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderChatboxAI
}

// StreamReply streams a reply from ChatboxAI.
// A quota-exhaustion answer ends the call with *chatreply.QuotaExhaustedError and is never retried.
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	settings := req.Settings

	headers := make(http.Header)
	headers.Set("Authorization", settings.APIKey)
	if id := strings.TrimSpace(settings.InstanceID); id != "" {
		headers.Set("Instance-Id", id)
	}

	endpoint := settings.HostOr(DefaultHost) + chatPath
	resp, _, err := p.client.Post(ctx, transport.Request{
		URL:        endpoint,
		Headers:    headers,
		Body:       openaicompat.NewChatRequest(settings, req.Messages),
		Accept:     "text/event-stream",
		ErrorHooks: []transport.ErrorHook{quotaHook},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return openaicompat.ConsumeStream(ctx, p.Name(), transport.Origin(endpoint), resp.Body, onText)
}

// quotaHook turns the distinguished quota status into a QuotaExhaustedError
func quotaHook(provider chatreply.ProviderID, statusCode int, _ http.Header, body []byte) error {
	if statusCode != QuotaExhaustedStatus {
		return nil
	}
	parsed := transport.ParseError(provider, statusCode, body)
	return &chatreply.QuotaExhaustedError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    parsed.Message,
	}
}
