package chatreply

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI is OpenAI's chat completions API
	ProviderOpenAI ProviderID = "openai"

	// ProviderAzure is Azure OpenAI Service
	ProviderAzure ProviderID = "azure"

	// ProviderClaude is Anthropic's Claude Messages API
	ProviderClaude ProviderID = "claude"

	// ProviderChatGLM is a self-hosted ChatGLM-6B API server (non-streaming)
	ProviderChatGLM ProviderID = "chatglm-6b"

	// ProviderChatboxAI is the hosted ChatboxAI service
	ProviderChatboxAI ProviderID = "chatbox-ai"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAzure, ProviderClaude, ProviderChatGLM, ProviderChatboxAI, ProviderLorem:
		return true
	default:
		return false
	}
}

// Registry maps provider IDs to Provider implementations.
// It is safe for concurrent use.
type Registry struct {
	providers map[ProviderID]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a registry holding the given providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderID]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider under its own Name()
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered for id
func (r *Registry) Get(id ProviderID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return p, nil
}

// IDs returns the registered provider IDs in lexical order
func (r *Registry) IDs() []ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
