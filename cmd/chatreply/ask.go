package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/providers"
)

type askOptions struct {
	provider    string
	model       string
	host        string
	system      string
	temperature float64
	maxTokens   int
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a prompt and stream the reply (reads stdin when no prompt is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "provider (openai, azure, claude, chatglm-6b, chatbox-ai, lorem)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "model or Azure deployment name")
	cmd.Flags().StringVar(&opts.host, "host", "", "API host override")
	cmd.Flags().StringVarP(&opts.system, "system", "s", "", "system prompt")
	cmd.Flags().Float64VarP(&opts.temperature, "temperature", "t", chatreply.DefaultTemperature, "sampling temperature")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "maximum reply tokens (0 = provider default)")
	return cmd
}

func runAsk(cmd *cobra.Command, root *rootOptions, opts *askOptions, args []string) error {
	logger, err := newLogger(root.logLevel)
	if err != nil {
		return err
	}

	loadDotEnv(logger)
	profile, err := loadProfile(root.configPath)
	if err != nil {
		return err
	}

	settings := profile.Settings
	flags := cmd.Flags()
	if flags.Changed("provider") {
		settings.Provider = chatreply.ProviderID(opts.provider)
	}
	if flags.Changed("model") {
		settings.Model = opts.model
	}
	if flags.Changed("host") {
		settings.Host = opts.host
	}
	if flags.Changed("temperature") {
		settings.Temperature = &opts.temperature
	}
	if flags.Changed("max-tokens") {
		settings.MaxTokens = &opts.maxTokens
	}
	system := profile.System
	if flags.Changed("system") {
		system = opts.system
	}
	applyEnv(&settings, os.Getenv)

	if settings.Provider == "" {
		return fmt.Errorf("no provider set: use --provider, the profile or CHATREPLY_PROVIDER")
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return fmt.Errorf("empty prompt")
	}

	req := &chatreply.ReplyRequest{
		Settings: settings,
		Messages: buildMessages(system, prompt),
	}

	dispatcher := providers.NewDispatcher(providers.Options{}, chatreply.WithLogger(logger))

	out := cmd.OutOrStdout()
	printer := &deltaPrinter{w: out}
	call := dispatcher.Start(cmd.Context(), req, printer.Print)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		select {
		case <-interrupts:
			call.Cancel()
		case <-call.Done():
		}
	}()

	reply, err := call.Wait()
	// Flush anything the printer has not shown yet (non-streaming providers, cancellation)
	printer.Print(reply.Text)
	fmt.Fprintln(out)

	if err != nil {
		return err
	}
	if reply.Cancelled {
		fmt.Fprintln(cmd.ErrOrStderr(), "(cancelled)")
	}
	return nil
}

// buildMessages returns the conversation for a single prompt with uuid message IDs
func buildMessages(system, prompt string) []chatreply.Message {
	var msgs []chatreply.Message
	if strings.TrimSpace(system) != "" {
		m := chatreply.NewSystemMessage(system)
		m.ID = uuid.NewString()
		msgs = append(msgs, m)
	}
	m := chatreply.NewUserMessage(prompt)
	m.ID = uuid.NewString()
	return append(msgs, m)
}

// deltaPrinter turns cumulative text into incremental writes
type deltaPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed int
}

func (p *deltaPrinter) Print(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(text) <= p.printed {
		return
	}
	_, _ = io.WriteString(p.w, text[p.printed:])
	p.printed = len(text)
}
