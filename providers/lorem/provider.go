package lorem

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	"github.com/haowjy/chatreply-go"
)

// DefaultReplyWords is the reply length when Settings.MaxTokens is unset
const DefaultReplyWords = 60

// Provider is a mock provider that streams lorem ipsum text word by word.
// Used for testing and development without requiring real API keys.
type Provider struct {
	mu        sync.Mutex
	generator *loremgen.Lorem

	// delay overrides the per-model word delay when non-nil
	delay func(model string) time.Duration
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// NewProviderWithDelay creates a lorem provider that waits d between words
// regardless of the model name.
func NewProviderWithDelay(d time.Duration) *Provider {
	p := NewProvider()
	p.delay = func(string) time.Duration { return d }
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() chatreply.ProviderID {
	return chatreply.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-medium"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// StreamReply streams about MaxTokens words of lorem ipsum, one word per chunk.
// Speed varies based on model name (lorem-slow, lorem-fast, lorem-medium).
func (p *Provider) StreamReply(ctx context.Context, req *chatreply.ReplyRequest, onText chatreply.TextHandler) (string, error) {
	model := req.Settings.Model
	if !p.SupportsModel(model) {
		return "", &chatreply.APIError{
			Provider:   p.Name(),
			StatusCode: http.StatusNotFound,
			Code:       "model_not_found",
			Message:    fmt.Sprintf("model %q not supported by lorem provider (must start with 'lorem-')", model),
		}
	}

	targetWords := req.Settings.GetMaxTokens(DefaultReplyWords)
	if targetWords < 1 {
		targetWords = 1
	}
	words := strings.Fields(p.generateTextWords(targetWords))
	if len(words) > targetWords {
		words = words[:targetWords]
	}
	delay := p.streamDelay(model)

	slog.Debug("lorem stream started", "model", model, "words", len(words), "delay", delay)

	var text strings.Builder
	timer := time.NewTimer(0)
	defer timer.Stop()

	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}
		select {
		case <-ctx.Done():
			return text.String(), ctx.Err()
		case <-timer.C:
		}

		if i > 0 {
			text.WriteString(" ")
		}
		text.WriteString(word)
		if onText != nil {
			onText(text.String())
		}
		timer.Reset(delay)
	}

	return text.String(), nil
}

func (p *Provider) streamDelay(model string) time.Duration {
	if p.delay != nil {
		return p.delay(model)
	}
	return getStreamDelay(model)
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - lorem-medium: 10 words/second (100ms per word)
// - default: 10 words/second
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// generateTextWords generates lorem ipsum text with at least targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		// Generate sentence with 5-15 words
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")

		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}
