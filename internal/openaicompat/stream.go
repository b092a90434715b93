package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/transport"
)

type streamError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ConsumeStream reads an SSE chat completions stream until [DONE] or EOF,
// calling onText with the cumulative content after every non-empty delta.
//
// The accumulated text is always returned. Once ctx is done no further event is
// decoded, even if it is already buffered, and the context error is returned alongside the partial text; any other read
// failure is a NetworkError tagged with origin.
func ConsumeStream(ctx context.Context, provider chatreply.ProviderID, origin string, body io.Reader, onText chatreply.TextHandler) (string, error) {
	decoder := transport.NewDecoder(body)
	var text strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}

		event, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return text.String(), nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return text.String(), ctxErr
			}
			return text.String(), &chatreply.NetworkError{Provider: provider, Origin: origin, Err: err}
		}

		data := strings.TrimSpace(event.Data)
		if data == "" {
			continue
		}
		if transport.IsDone(data) {
			return text.String(), nil
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return text.String(), chatreply.NewMalformedPayloadError(provider, data, err)
		}

		if len(chunk.Choices) == 0 {
			// Error envelopes share the stream with regular chunks
			var se streamError
			if json.Unmarshal([]byte(data), &se) == nil && se.Error != nil {
				return text.String(), &chatreply.APIError{
					Provider: provider,
					Type:     se.Error.Type,
					Code:     codeString(se.Error.Code),
					Message:  se.Error.Message,
					Raw:      []byte(data),
				}
			}
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content == nil || *delta.Content == "" {
			continue
		}

		text.WriteString(*delta.Content)
		if onText != nil {
			onText(text.String())
		}
	}
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
