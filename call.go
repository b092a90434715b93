package chatreply

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Call is a single in-flight reply. It owns its own cancellation context and
// text accumulator; nothing is shared between calls.
//
// A Call is created by Dispatcher.Start and is safe for concurrent use.
type Call struct {
	provider ProviderID
	model    string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	state     CallState
	text      string
	cancelled bool
	reply     *Reply
	err       error
}

func newCall(parent context.Context, provider ProviderID, model string) *Call {
	ctx, cancel := context.WithCancel(parent)
	return &Call{
		provider: provider,
		model:    model,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		state:    CallIdle,
	}
}

// Cancel aborts the call. The text accumulated up to this point becomes the
// reply; Wait returns it without an error. Cancel is idempotent and a no-op
// once the call has finished.
func (c *Call) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsTerminal() {
		return
	}
	c.cancelled = true
	c.cancel()
}

// Wait blocks until the call reaches a terminal state.
//
// On cancellation it returns the partial reply with Cancelled set and a nil error.
// On failure it returns the partial reply (possibly empty) and the provider error.
func (c *Call) Wait() (*Reply, error) {
	<-c.done
	return c.reply, c.err
}

// Done returns a channel closed when the call reaches a terminal state
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state
func (c *Call) State() CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the cumulative text received so far
func (c *Call) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// run drives the provider and settles the call. It must be called exactly once.
func (c *Call) run(p Provider, req *ReplyRequest, onText TextHandler, logger *slog.Logger) {
	defer close(c.done)
	defer c.cancel()

	started := time.Now()
	c.setState(CallSending)

	text, err := p.StreamReply(c.ctx, req, func(text string) {
		if !c.record(text) {
			return
		}
		if onText != nil {
			onText(text)
		}
	})

	c.settle(text, err)

	reply, callErr := c.reply, c.err
	attrs := []any{
		"provider", c.provider,
		"model", c.model,
		"state", reply.State.String(),
		"chars", len(reply.Text),
		"duration", time.Since(started),
	}
	if callErr != nil {
		logger.Warn("reply failed", append(attrs, "error", callErr)...)
		return
	}
	logger.Info("reply finished", attrs...)
}

func (c *Call) setState(state CallState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// record stores a cumulative chunk. Chunks arriving after cancellation are dropped
// so the partial reply is exactly what had been delivered when Cancel returned.
func (c *Call) record(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return false
	}
	if c.state == CallSending {
		c.state = CallStreaming
	}
	c.text = text
	return true
}

// settle moves the call into its terminal state from the provider's result.
// Cancellation wins over whatever the provider returned, including a clean finish.
func (c *Call) settle(text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply := &Reply{
		Provider: c.provider,
		Model:    c.model,
	}

	ctxErr := c.ctx.Err()
	switch {
	case c.cancelled || errors.Is(ctxErr, context.Canceled):
		reply.Text = c.text
		reply.Cancelled = true
		reply.State = CallCancelled
	case err == nil && ctxErr != nil:
		reply.Text = c.text
		reply.State = CallFailed
		c.err = ctxErr
	case err == nil:
		reply.Text = text
		reply.State = CallDone
	default:
		reply.Text = c.text
		reply.State = CallFailed
		c.err = err
	}

	c.state = reply.State
	c.text = reply.Text
	c.reply = reply
}

// fail settles a call that never reached a provider
func (c *Call) fail(err error) {
	c.mu.Lock()
	c.state = CallFailed
	c.reply = &Reply{Provider: c.provider, Model: c.model, State: CallFailed}
	c.err = err
	c.mu.Unlock()

	c.cancel()
	close(c.done)
}
