package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haowjy/chatreply-go"
)

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
provider = "claude"
model = "claude-sonnet-4-5"
temperature = 0.4
max_tokens = 512
max_context_messages = 12
system = "You are terse."
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	profile, err := loadProfile(path)
	require.NoError(t, err)
	require.Equal(t, chatreply.ProviderClaude, profile.Provider)
	require.Equal(t, "claude-sonnet-4-5", profile.Model)
	require.NotNil(t, profile.Temperature)
	require.Equal(t, 0.4, *profile.Temperature)
	require.Equal(t, 512, profile.GetMaxTokens(0))
	require.Equal(t, 12, profile.MaxContextMessages)
	require.Equal(t, "You are terse.", profile.System)
}

func TestLoadProfile_MissingExplicitFile(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadProfile_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = "), 0o600))

	_, err := loadProfile(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant",
		"CHATREPLY_HOST":    "https://proxy.local",
	}
	getenv := func(k string) string { return env[k] }

	s := chatreply.Settings{Provider: chatreply.ProviderClaude}
	applyEnv(&s, getenv)
	require.Equal(t, "sk-ant", s.APIKey)
	require.Equal(t, "https://proxy.local", s.Host)

	// Explicit values win
	s = chatreply.Settings{Provider: chatreply.ProviderClaude, APIKey: "configured", Host: "https://api.anthropic.com"}
	applyEnv(&s, getenv)
	require.Equal(t, "configured", s.APIKey)
	require.Equal(t, "https://api.anthropic.com", s.Host)

	// Generic key takes precedence over provider-specific ones
	env["CHATREPLY_API_KEY"] = "generic"
	s = chatreply.Settings{Provider: chatreply.ProviderClaude}
	applyEnv(&s, getenv)
	require.Equal(t, "generic", s.APIKey)
}

func TestApplyEnv_ChatboxInstance(t *testing.T) {
	env := map[string]string{
		"CHATREPLY_PROVIDER":    "chatbox-ai",
		"CHATBOXAI_LICENSE_KEY": "lic",
		"CHATBOXAI_INSTANCE_ID": "inst",
	}
	s := chatreply.Settings{}
	applyEnv(&s, func(k string) string { return env[k] })

	require.Equal(t, chatreply.ProviderChatboxAI, s.Provider)
	require.Equal(t, "lic", s.APIKey)
	require.Equal(t, "inst", s.InstanceID)
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages("sys", "hello")
	require.Len(t, msgs, 2)
	require.Equal(t, chatreply.RoleSystem, msgs[0].Role)
	require.Equal(t, chatreply.RoleUser, msgs[1].Role)
	require.NotEmpty(t, msgs[0].ID)
	require.NotEqual(t, msgs[0].ID, msgs[1].ID)

	require.Len(t, buildMessages("  ", "hello"), 1)
}

func TestDeltaPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &deltaPrinter{w: &buf}

	p.Print("Hel")
	p.Print("Hello")
	p.Print("Hello")
	p.Print("Hello, world")

	require.Equal(t, "Hello, world", buf.String())
}

func TestAskCmd_Lorem(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"ask",
		"--config", writeEmptyProfile(t),
		"--provider", "lorem",
		"--model", "lorem-fast",
		"--max-tokens", "3",
		"hello",
	})

	require.NoError(t, cmd.Execute())
	require.Len(t, strings.Fields(out.String()), 3)
}

func TestProvidersCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"providers"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "lorem: lorem-fast, lorem-medium, lorem-slow")
	require.Contains(t, out.String(), "chatglm-6b: chatglm-6b")
}

func writeEmptyProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestLoadDotEnv_ReportsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BROKEN='unterminated\n"), 0o600))
	chdirForTest(t, dir)

	var buf bytes.Buffer
	loadDotEnv(slog.New(slog.NewTextHandler(&buf, nil)))
	require.Contains(t, buf.String(), "ignoring .env file")
}
