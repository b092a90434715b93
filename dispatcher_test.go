package chatreply

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedProvider emits chunks and then either returns err or, when block is
// set, waits for cancellation.
type scriptedProvider struct {
	chunks []string
	err    error
	block  bool

	// streaming is closed after the first chunk when non-nil
	streaming chan struct{}

	mu  sync.Mutex
	got *ReplyRequest
}

func (p *scriptedProvider) Name() ProviderID { return ProviderLorem }

func (p *scriptedProvider) StreamReply(ctx context.Context, req *ReplyRequest, onText TextHandler) (string, error) {
	p.mu.Lock()
	p.got = req
	p.mu.Unlock()

	text := ""
	for i, chunk := range p.chunks {
		text += chunk
		onText(text)
		if i == 0 && p.streaming != nil {
			close(p.streaming)
		}
	}

	if p.block {
		<-ctx.Done()
		// Late chunks must be dropped by the call
		onText(text + " late")
		return text + " late", ctx.Err()
	}
	return text, p.err
}

func (p *scriptedProvider) request() *ReplyRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.got
}

func newTestDispatcher(p Provider) *Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(NewRegistry(p), WithLogger(logger))
}

func loremRequest(msgs ...Message) *ReplyRequest {
	return &ReplyRequest{
		Settings: Settings{Provider: ProviderLorem, Model: "lorem-fast"},
		Messages: msgs,
	}
}

func TestDispatcher_Reply_Success(t *testing.T) {
	d := newTestDispatcher(&scriptedProvider{chunks: []string{"Hel", "lo"}})

	var seen []string
	reply, err := d.Reply(context.Background(), loremRequest(NewUserMessage("hi")), func(text string) {
		seen = append(seen, text)
	})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.Text != "Hello" || reply.State != CallDone || reply.Cancelled {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if len(seen) != 2 || seen[0] != "Hel" || seen[1] != "Hello" {
		t.Errorf("onText saw %v, want cumulative [Hel Hello]", seen)
	}
	if reply.Provider != ProviderLorem || reply.Model != "lorem-fast" {
		t.Errorf("reply metadata = %s/%s", reply.Provider, reply.Model)
	}
}

func TestDispatcher_SequencesBeforeSubmission(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"ok"}}
	d := newTestDispatcher(p)

	input := []Message{
		NewAssistantMessage("Welcome"),
		NewUserMessage("a"),
		NewUserMessage("b"),
		NewSystemMessage("be brief"),
	}
	if _, err := d.Reply(context.Background(), loremRequest(input...), nil); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	got := p.request().Messages
	if len(got) != 2 {
		t.Fatalf("expected system + user, got %d messages", len(got))
	}
	if got[0].Role != RoleSystem || got[0].Content != "be brief" {
		t.Errorf("first message = %+v", got[0])
	}
	if got[1].Role != RoleUser || got[1].Content != "> Welcome\n\na\n\nb" {
		t.Errorf("second message = %+v", got[1])
	}
	if input[0].Role != RoleAssistant || len(input) != 4 {
		t.Error("caller's messages were modified")
	}
}

func TestCall_CancelReturnsPartialText(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"partial"}, block: true, streaming: make(chan struct{})}
	d := newTestDispatcher(p)

	call := d.Start(context.Background(), loremRequest(NewUserMessage("hi")), nil)

	select {
	case <-p.streaming:
	case <-time.After(5 * time.Second):
		t.Fatal("provider never streamed")
	}
	if got := call.State(); got != CallStreaming {
		t.Errorf("State() = %s, want streaming", got)
	}

	call.Cancel()
	reply, err := call.Wait()
	if err != nil {
		t.Fatalf("cancelled call should not return an error, got %v", err)
	}
	if !reply.Cancelled || reply.State != CallCancelled {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.Text != "partial" {
		t.Errorf("Text = %q, want %q", reply.Text, "partial")
	}
	if call.State() != CallCancelled {
		t.Errorf("State() = %s, want cancelled", call.State())
	}

	// Cancel after completion is a no-op
	call.Cancel()
}

// finishingProvider delivers one chunk, waits for resume, then ignores the
// cancellation and returns a longer text without an error.
type finishingProvider struct {
	streaming chan struct{}
	resume    chan struct{}
}

func (p *finishingProvider) Name() ProviderID { return ProviderLorem }

func (p *finishingProvider) StreamReply(ctx context.Context, req *ReplyRequest, onText TextHandler) (string, error) {
	onText("partial")
	close(p.streaming)
	<-p.resume
	onText("partial and more")
	return "partial and more", nil
}

func TestCall_CancelWinsOverCleanFinish(t *testing.T) {
	p := &finishingProvider{streaming: make(chan struct{}), resume: make(chan struct{})}
	d := newTestDispatcher(p)

	var delivered []string
	call := d.Start(context.Background(), loremRequest(NewUserMessage("hi")), func(text string) {
		delivered = append(delivered, text)
	})

	select {
	case <-p.streaming:
	case <-time.After(5 * time.Second):
		t.Fatal("provider never streamed")
	}
	call.Cancel()
	close(p.resume)

	reply, err := call.Wait()
	if err != nil {
		t.Fatalf("cancelled call should not return an error, got %v", err)
	}
	if !reply.Cancelled || reply.State != CallCancelled {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.Text != "partial" {
		t.Errorf("Text = %q, want %q", reply.Text, "partial")
	}
	if len(delivered) != 1 || delivered[0] != "partial" {
		t.Errorf("delivered = %q, want only the pre-cancel chunk", delivered)
	}
}

func TestCall_FailureKeepsPartialText(t *testing.T) {
	apiErr := &APIError{Provider: ProviderLorem, StatusCode: 500, Message: "boom"}
	d := newTestDispatcher(&scriptedProvider{chunks: []string{"par"}, err: apiErr})

	reply, err := d.Reply(context.Background(), loremRequest(NewUserMessage("hi")), nil)
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected API error, got %v", err)
	}
	if reply.State != CallFailed || reply.Text != "par" {
		t.Errorf("unexpected reply: %+v", reply)
	}
}

func TestCall_DeadlineIsFailure(t *testing.T) {
	d := newTestDispatcher(&scriptedProvider{block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	reply, err := d.Reply(ctx, loremRequest(NewUserMessage("hi")), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if reply.State != CallFailed {
		t.Errorf("State = %s, want failed", reply.State)
	}
}

func TestDispatcher_UnknownProvider(t *testing.T) {
	d := newTestDispatcher(&scriptedProvider{})

	req := loremRequest(NewUserMessage("hi"))
	req.Settings.Provider = "nope"

	call := d.Start(context.Background(), req, nil)
	select {
	case <-call.Done():
	default:
		t.Fatal("call for unknown provider should already be finished")
	}

	reply, err := call.Wait()
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if reply.State != CallFailed {
		t.Errorf("State = %s, want failed", reply.State)
	}
}

func TestDispatcher_ConcurrentCalls(t *testing.T) {
	d := newTestDispatcher(&scriptedProvider{chunks: []string{"a", "b"}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply, err := d.Reply(context.Background(), loremRequest(NewUserMessage("hi")), nil)
			if err != nil || reply.Text != "ab" {
				t.Errorf("Reply() = %+v, %v", reply, err)
			}
		}()
	}
	wg.Wait()
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&scriptedProvider{})

	if _, err := r.Get(ProviderLorem); err != nil {
		t.Errorf("Get(lorem) error = %v", err)
	}
	if _, err := r.Get(ProviderOpenAI); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Get(openai) error = %v, want ErrUnknownProvider", err)
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != ProviderLorem {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestCallState(t *testing.T) {
	for _, s := range []CallState{CallDone, CallCancelled, CallFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []CallState{CallIdle, CallSending, CallStreaming} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestDispatcher_LogsWarningsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := NewDispatcher(NewRegistry(&scriptedProvider{}), WithLogger(logger))

	req := &ReplyRequest{Settings: Settings{Provider: ProviderLorem, Model: "not-in-catalog", TopP: float64Ptr(1.2)}}
	if _, err := d.Reply(context.Background(), req, nil); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	var unknownLine, topPLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, string(WarningCodeModelUnknown)):
			unknownLine = line
		case strings.Contains(line, string(WarningCodeTopPOutOfRange)):
			topPLine = line
		}
	}
	if !strings.Contains(topPLine, "level=WARN") {
		t.Errorf("TOP_P_OUT_OF_RANGE should be logged at warn, got %q", topPLine)
	}
	if !strings.Contains(unknownLine, "level=DEBUG") {
		t.Errorf("MODEL_UNKNOWN should be logged at debug, got %q", unknownLine)
	}
}
