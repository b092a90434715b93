package azure

import (
	"context"
	"net/http"
	"net/url"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/openaicompat"
	"github.com/haowjy/chatreply-go/internal/transport"
)

// Config configures the Azure OpenAI provider.
type Config struct {
	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// Provider implements the chatreply.Provider interface for Azure OpenAI Service.
//
// Settings mapping:
//   - Host: the resource endpoint, e.g. "https://my-resource.openai.azure.com"
//   - Model: the deployment name
//   - APIKey: the resource key, sent as the api-key header
//   - AzureAPIVersion: the api-version query parameter
type Provider struct {
	client *transport.Client
}

// NewProvider creates a new Azure OpenAI provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		client: transport.New(transport.Config{
			Provider:   chatreply.ProviderAzure,
			HTTPClient: cfg.HTTPClient,
			MaxRetries: cfg.MaxRetries,
		}),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderAzure
}

// StreamReply streams a chat completion from the configured deployment.
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	settings := req.Settings

	headers := make(http.Header)
	headers.Set("api-key", settings.APIKey)

	body := openaicompat.NewChatRequest(settings, req.Messages)
	// The deployment in the URL selects the model
	body.Model = ""

	endpoint := Endpoint(settings)
	resp, _, err := p.client.Post(ctx, transport.Request{
		URL:     endpoint,
		Headers: headers,
		Body:    body,
		Accept:  "text/event-stream",
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return openaicompat.ConsumeStream(ctx, p.Name(), transport.Origin(endpoint), resp.Body, onText)
}

// Endpoint returns the deployment's chat completions URL for settings
func Endpoint(settings chatreply.Settings) string {
	query := url.Values{}
	query.Set("api-version", settings.GetAzureAPIVersion())
	return settings.HostOr("") + "/openai/deployments/" + url.PathEscape(settings.Model) + "/chat/completions?" + query.Encode()
}
