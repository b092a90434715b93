package claude

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/transport"
)

// DefaultHost is the Anthropic API origin used when Settings.Host is empty
const DefaultHost = "https://api.anthropic.com"

// DefaultMaxTokens is sent when Settings.MaxTokens is unset; the Messages API requires one
const DefaultMaxTokens = chatreply.DefaultMaxTokens

// Config configures the Claude provider.
type Config struct {
	// HTTPClient defaults to the SDK's client
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// Provider implements the chatreply.Provider interface for Anthropic's Claude models.
type Provider struct {
	httpClient *http.Client
	maxRetries int
}

// NewProvider creates a new Claude provider.
func NewProvider(cfg Config) *Provider {
	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = transport.DefaultMaxRetries
	case retries < 0:
		retries = 0
	}
	return &Provider{
		httpClient: cfg.HTTPClient,
		maxRetries: retries,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderClaude
}

// StreamReply streams a Messages API reply.
//
// The stream is re-opened on retryable failures only while no text has been
// received, so a reply is never stitched together from two generations.
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	settings := req.Settings
	host := settings.HostOr(DefaultHost)
	client := p.newClient(settings.APIKey, host)
	params := buildParams(req)

	var text strings.Builder
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}

		err := p.stream(ctx, client, params, &text, onText)
		if err == nil {
			return text.String(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return text.String(), ctxErr
		}

		lastErr = convertError(err, transport.Origin(host))
		if text.Len() > 0 || !chatreply.IsRetryable(lastErr) {
			return text.String(), lastErr
		}
	}
	return text.String(), lastErr
}

func (p *Provider) newClient(apiKey, host string) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(host),
		// Retries are driven by StreamReply
		option.WithMaxRetries(0),
	}
	if p.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(p.httpClient))
	}
	return anthropic.NewClient(opts...)
}

func (p *Provider) stream(ctx context.Context, client anthropic.Client, params anthropic.MessageNewParams, text *strings.Builder, onText chatreply.TextHandler) error {
	stream := client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()

		switch e := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if e.Delta.Type != "text_delta" || e.Delta.Text == "" {
				continue
			}
			text.WriteString(e.Delta.Text)
			if onText != nil {
				onText(text.String())
			}
		}
	}

	return stream.Err()
}

// buildParams converts a sequenced request into Messages API parameters
func buildParams(req *chatreply.ReplyRequest) anthropic.MessageNewParams {
	settings := req.Settings

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(settings.Model),
		Messages:  convertMessages(req.Conversation()),
		MaxTokens: int64(settings.GetMaxTokens(DefaultMaxTokens)),
	}

	if system := req.SystemPrompt(); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if settings.Temperature != nil {
		params.Temperature = anthropic.Float(*settings.Temperature)
	}
	if settings.TopP != nil {
		params.TopP = anthropic.Float(*settings.TopP)
	}

	return params
}

func convertMessages(msgs []chatreply.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		blocks := convertBlocks(msg)
		if len(blocks) == 0 {
			continue
		}
		if msg.Role == chatreply.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

// convertBlocks puts pictures ahead of the text. Only data URLs can be sent
// inline; remote pictures are referenced by URL in a text block.
func convertBlocks(msg chatreply.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	var refs []string

	if msg.Role == chatreply.RoleUser {
		for _, pic := range msg.Pictures {
			if mediaType, data, ok := pic.DataURLParts(); ok {
				blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
			} else if pic.URL != "" {
				refs = append(refs, pic.URL)
			}
		}
	}

	text := msg.Content
	if len(refs) > 0 {
		text = strings.TrimSpace(text + "\n\n" + strings.Join(refs, "\n"))
	}
	if text != "" {
		blocks = append(blocks, anthropic.NewTextBlock(text))
	}
	return blocks
}

// convertError maps SDK failures onto chatreply error kinds
func convertError(err error, origin string) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return transport.ParseError(chatreply.ProviderClaude, apiErr.StatusCode, []byte(apiErr.RawJSON()))
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &chatreply.NetworkError{Provider: chatreply.ProviderClaude, Origin: origin, Err: err}
	}

	return &chatreply.APIError{
		Provider: chatreply.ProviderClaude,
		Message:  err.Error(),
	}
}
