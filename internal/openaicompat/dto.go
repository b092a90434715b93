// Package openaicompat implements the chat-completions wire format shared by
// OpenAI, Azure OpenAI and ChatboxAI.
package openaicompat

import (
	"github.com/haowjy/chatreply-go"
)

// ChatRequest is the body of a chat completions request.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// ChatMessage is one message in OpenAI format.
// Content is a plain string, or a []ContentPart when pictures are attached.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part message content.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references a picture by URL or data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// ChatCompletionChunk represents a streaming chunk.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"` // "chat.completion.chunk"
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice represents a choice in a streaming chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta represents incremental updates in a chunk.
type Delta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NewChatRequest builds a streaming request body from settings and sequenced messages
func NewChatRequest(settings chatreply.Settings, messages []chatreply.Message) ChatRequest {
	return ChatRequest{
		Model:       settings.Model,
		Messages:    ConvertMessages(messages),
		Temperature: settings.GetTemperature(chatreply.DefaultTemperature),
		TopP:        settings.GetTopP(chatreply.DefaultTopP),
		MaxTokens:   settings.GetMaxTokens(0),
		Stream:      true,
	}
}

// ConvertMessages converts library messages to OpenAI format.
func ConvertMessages(messages []chatreply.Message) []ChatMessage {
	result := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, ChatMessage{
			Role:    msg.Role.String(),
			Content: convertContent(msg),
		})
	}
	return result
}

func convertContent(msg chatreply.Message) any {
	if !msg.HasPictures() {
		return msg.Content
	}

	parts := make([]ContentPart, 0, len(msg.Pictures)+1)
	if msg.Content != "" {
		parts = append(parts, ContentPart{Type: "text", Text: msg.Content})
	}
	for _, pic := range msg.Pictures {
		parts = append(parts, ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: pic.URL}})
	}
	return parts
}
