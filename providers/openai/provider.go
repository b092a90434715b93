package openai

import (
	"context"
	"net/http"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/openaicompat"
	"github.com/haowjy/chatreply-go/internal/transport"
)

// DefaultHost is used when Settings.Host is empty
const DefaultHost = "https://api.openai.com"

const chatCompletionsPath = "/v1/chat/completions"

// Config configures the OpenAI provider.
type Config struct {
	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// Provider implements the chatreply.Provider interface for OpenAI's chat
// completions API, or any server speaking the same protocol at Settings.Host.
type Provider struct {
	client *transport.Client
}

// NewProvider creates a new OpenAI provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		client: transport.New(transport.Config{
			Provider:   chatreply.ProviderOpenAI,
			HTTPClient: cfg.HTTPClient,
			MaxRetries: cfg.MaxRetries,
		}),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderOpenAI
}

// StreamReply streams a chat completion and reports cumulative text through onText.
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	settings := req.Settings

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+settings.APIKey)

	endpoint := Endpoint(settings)
	resp, _, err := p.client.Post(ctx, transport.Request{
		URL:     endpoint,
		Headers: headers,
		Body:    openaicompat.NewChatRequest(settings, req.Messages),
		Accept:  "text/event-stream",
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return openaicompat.ConsumeStream(ctx, p.Name(), transport.Origin(endpoint), resp.Body, onText)
}

// Endpoint returns the chat completions URL for settings
func Endpoint(settings chatreply.Settings) string {
	return settings.HostOr(DefaultHost) + chatCompletionsPath
}
