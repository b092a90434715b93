package chatglm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/transport"
)

// Config configures the ChatGLM provider.
type Config struct {
	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// Provider implements the chatreply.Provider interface for a self-hosted
// ChatGLM-6B API server. The server does not stream; the whole reply is
// delivered to onText in a single call.
//
// Settings.Host is the full endpoint URL, e.g. "http://127.0.0.1:8000".
type Provider struct {
	client *transport.Client
}

// NewProvider creates a new ChatGLM provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		client: transport.New(transport.Config{
			Provider:   chatreply.ProviderChatGLM,
			HTTPClient: cfg.HTTPClient,
			MaxRetries: cfg.MaxRetries,
		}),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderChatGLM
}

// ChatRequest is the ChatGLM API request body
type ChatRequest struct {
	Prompt  string      `json:"prompt"`
	History [][2]string `json:"history"`
}

type chatResponse struct {
	Response string          `json:"response"`
	History  json.RawMessage `json:"history,omitempty"`
	Status   int             `json:"status,omitempty"`
	Time     string          `json:"time,omitempty"`
}

// StreamReply posts the conversation and returns the server's response field.
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	endpoint := req.Settings.HostOr("")
	resp, _, err := p.client.Post(ctx, transport.Request{
		URL:  endpoint,
		Body: BuildRequest(req.Messages),
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &chatreply.NetworkError{Provider: p.Name(), Origin: transport.Origin(endpoint), Err: err}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", chatreply.NewMalformedPayloadError(p.Name(), string(body), err)
	}

	if onText != nil {
		onText(out.Response)
	}
	return out.Response, nil
}

// BuildRequest maps a sequenced conversation onto ChatGLM's prompt/history shape.
//
// The last user message is the prompt; every earlier user message is paired
// with the assistant message that follows it. System text is prefixed to the
// first question. Messages after the last user message are ignored.
func BuildRequest(msgs []chatreply.Message) ChatRequest {
	var system string
	conversation := msgs
	if len(msgs) > 0 && msgs[0].Role == chatreply.RoleSystem {
		system = msgs[0].Content
		conversation = msgs[1:]
	}

	last := -1
	for i, msg := range conversation {
		if msg.Role == chatreply.RoleUser {
			last = i
		}
	}

	out := ChatRequest{History: [][2]string{}}
	if last < 0 {
		out.Prompt = system
		return out
	}

	var question string
	pending := false
	for _, msg := range conversation[:last] {
		switch msg.Role {
		case chatreply.RoleUser:
			if pending {
				out.History = append(out.History, [2]string{question, ""})
			}
			question = msg.Content
			pending = true
		case chatreply.RoleAssistant:
			out.History = append(out.History, [2]string{question, msg.Content})
			question = ""
			pending = false
		}
	}
	if pending {
		out.History = append(out.History, [2]string{question, ""})
	}
	out.Prompt = conversation[last].Content

	if system != "" {
		if len(out.History) > 0 {
			out.History[0][0] = prefix(system, out.History[0][0])
		} else {
			out.Prompt = prefix(system, out.Prompt)
		}
	}
	return out
}

func prefix(system, text string) string {
	if strings.TrimSpace(text) == "" {
		return system
	}
	return system + "\n\n" + text
}
