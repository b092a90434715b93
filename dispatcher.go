package chatreply

import (
	"context"
	"log/slog"
)

// Dispatcher routes reply requests to the registered provider selected by
// Settings.Provider. It holds no per-call state; any number of calls may run
// concurrently.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	validate bool
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the structured logger used for call lifecycle and validation warnings
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithValidationWarnings toggles logging of advisory validation warnings (on by default)
func WithValidationWarnings(enabled bool) Option {
	return func(d *Dispatcher) {
		d.validate = enabled
	}
}

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
		validate: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the provider registry
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Start begins a reply in the background and returns its Call immediately.
//
// The history is trimmed to the settings' context limit and sequenced before
// submission; req itself is not modified. onText may be nil.
// An unknown provider yields a Call that has already failed with ErrUnknownProvider.
func (d *Dispatcher) Start(ctx context.Context, req *ReplyRequest, onText TextHandler) *Call {
	settings := req.Settings
	call := newCall(ctx, settings.Provider, settings.Model)

	provider, err := d.registry.Get(settings.Provider)
	if err != nil {
		d.logger.Warn("reply rejected", "provider", settings.Provider, "error", err)
		call.fail(err)
		return call
	}

	prepared := d.prepare(req)

	d.logger.Info("reply started",
		"provider", settings.Provider,
		"model", settings.Model,
		"messages", len(prepared.Messages),
	)

	go call.run(provider, prepared, onText, d.logger)
	return call
}

// Reply is Start followed by Wait.
func (d *Dispatcher) Reply(ctx context.Context, req *ReplyRequest, onText TextHandler) (*Reply, error) {
	return d.Start(ctx, req, onText).Wait()
}

// prepare returns the request that is actually handed to the provider
func (d *Dispatcher) prepare(req *ReplyRequest) *ReplyRequest {
	trimmed := TrimContext(req.Messages, req.Settings.ContextLimit())
	prepared := &ReplyRequest{
		Settings: req.Settings,
		Messages: SequenceMessages(trimmed),
	}

	if d.validate {
		warnings := GetValidationWarnings(prepared)
		for _, w := range FilterWarningsBySeverity(warnings, SeverityInfo) {
			d.logger.Debug("request validation note", warningAttrs(prepared, w)...)
		}
		for _, w := range FilterWarningsBySeverity(warnings, SeverityWarning, SeverityError) {
			d.logger.Warn("request validation warning", warningAttrs(prepared, w)...)
		}
	}

	return prepared
}

func warningAttrs(req *ReplyRequest, w ValidationWarning) []any {
	return []any{
		"provider", req.Settings.Provider,
		"code", w.Code,
		"field", w.Field,
		"message", w.Message,
	}
}
