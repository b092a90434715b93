// Package providers wires every built-in provider into a chatreply.Registry.
package providers

import (
	"net/http"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/providers/azure"
	"github.com/haowjy/chatreply-go/providers/chatboxai"
	"github.com/haowjy/chatreply-go/providers/chatglm"
	"github.com/haowjy/chatreply-go/providers/claude"
	"github.com/haowjy/chatreply-go/providers/lorem"
	"github.com/haowjy/chatreply-go/providers/openai"
)

// Options are shared by all built-in HTTP providers.
type Options struct {
	// HTTPClient is used for every provider request; nil means the default client
	HTTPClient *http.Client

	// MaxRetries is the number of immediate re-attempts (0 = default of 3, negative = none)
	MaxRetries int
}

// NewRegistry returns a registry holding OpenAI, Azure, Claude, ChatGLM,
// ChatboxAI and the lorem mock.
func NewRegistry(opts Options) *chatreply.Registry {
	return chatreply.NewRegistry(
		openai.NewProvider(openai.Config{HTTPClient: opts.HTTPClient, MaxRetries: opts.MaxRetries}),
		azure.NewProvider(azure.Config{HTTPClient: opts.HTTPClient, MaxRetries: opts.MaxRetries}),
		claude.NewProvider(claude.Config{HTTPClient: opts.HTTPClient, MaxRetries: opts.MaxRetries}),
		chatglm.NewProvider(chatglm.Config{HTTPClient: opts.HTTPClient, MaxRetries: opts.MaxRetries}),
		chatboxai.NewProvider(chatboxai.Config{HTTPClient: opts.HTTPClient, MaxRetries: opts.MaxRetries}),
		lorem.NewProvider(),
	)
}

// NewDispatcher is a convenience for chatreply.NewDispatcher(NewRegistry(opts), dopts...).
func NewDispatcher(opts Options, dopts ...chatreply.Option) *chatreply.Dispatcher {
	return chatreply.NewDispatcher(NewRegistry(opts), dopts...)
}
