package chatreply

import (
	"context"
)

// Provider defines the interface that all chat providers must implement.
// Each provider owns the construction of exactly one request per call and
// the decoding of its response into plain text.
//
// Types used by this interface:
//   - ReplyRequest, Settings: defined in request.go and params.go
//   - TextHandler: defined in streaming.go
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "claude", "lorem")
	Name() ProviderID

	// StreamReply sends req.Messages (already sequenced) and blocks until the reply
	// is complete, the context is cancelled, or the request fails.
	//
	// onText is invoked with the CUMULATIVE text decoded so far, once per chunk.
	// Non-streaming providers invoke it once with the full reply.
	//
	// The accumulated text is returned even when err != nil, so callers can
	// keep partial output after a cancellation or a mid-stream failure.
	//
	// Usage:
	//   text, err := provider.StreamReply(ctx, req, func(text string) {
	//     render(text)
	//   })
	StreamReply(ctx context.Context, req *ReplyRequest, onText TextHandler) (string, error)
}
