package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/internal/envfile"
)

// Profile is the on-disk CLI configuration. Settings fields sit at the top level
// of the file:
//
//	provider = "claude"
//	model = "claude-sonnet-4-5"
//	system = "You are a terse assistant."
//	max_context_messages = 20
type Profile struct {
	chatreply.Settings

	// System is prepended as a system message to every conversation
	System string `toml:"system"`
}

// apiKeyEnv lists the environment variables consulted per provider when no
// key is configured. CHATREPLY_API_KEY applies to every provider.
var apiKeyEnv = map[chatreply.ProviderID][]string{
	chatreply.ProviderOpenAI:    {"OPENAI_API_KEY"},
	chatreply.ProviderAzure:     {"AZURE_OPENAI_API_KEY"},
	chatreply.ProviderClaude:    {"ANTHROPIC_API_KEY"},
	chatreply.ProviderChatboxAI: {"CHATBOXAI_LICENSE_KEY"},
}

// defaultConfigPath returns <user config dir>/chatreply/config.toml
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, "chatreply", "config.toml"), nil
}

// loadProfile reads the profile at path. A missing file is only an error
// when the path was given explicitly.
func loadProfile(path string) (*Profile, error) {
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return &Profile{}, nil
		}
		path = p
	}

	profile := &Profile{}
	if _, err := toml.DecodeFile(path, profile); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return profile, nil
		}
		return nil, fmt.Errorf("failed to load profile %s: %w", path, err)
	}
	return profile, nil
}

// loadDotEnv loads the nearest .env; a broken file is reported but not fatal
func loadDotEnv(logger *slog.Logger) {
	path, err := envfile.Load()
	switch {
	case err != nil:
		logger.Warn("ignoring .env file", "path", path, "error", err)
	case path != "":
		logger.Debug("loaded .env file", "path", path)
	}
}

// applyEnv fills unset credentials and hosts from the environment
func applyEnv(s *chatreply.Settings, getenv func(string) string) {
	if s.Provider == "" {
		s.Provider = chatreply.ProviderID(strings.TrimSpace(getenv("CHATREPLY_PROVIDER")))
	}
	if s.APIKey == "" {
		for _, name := range append([]string{"CHATREPLY_API_KEY"}, apiKeyEnv[s.Provider]...) {
			if v := strings.TrimSpace(getenv(name)); v != "" {
				s.APIKey = v
				break
			}
		}
	}
	if s.Host == "" {
		s.Host = strings.TrimSpace(getenv("CHATREPLY_HOST"))
	}
	if s.Provider == chatreply.ProviderChatboxAI && s.InstanceID == "" {
		s.InstanceID = strings.TrimSpace(getenv("CHATBOXAI_INSTANCE_ID"))
	}
}
