package chatreply

import (
	"strings"
)

// Defaults applied by providers when the corresponding setting is unset
const (
	DefaultTemperature     = 0.7
	DefaultTopP            = 1.0
	DefaultMaxTokens       = 4096
	DefaultAzureAPIVersion = "2023-05-15"
)

// Settings is the per-provider configuration bag of a reply request.
// Optional sampling fields are pointers to distinguish "not set" from "set to zero value".
//
// Nothing here is validated before submission: the receiving API is the source of
// truth. GetValidationWarnings reports advisory problems without blocking.
type Settings struct {
	// Provider selects the provider implementation
	Provider ProviderID `json:"provider" toml:"provider"`

	// Host overrides the provider's base URL (required for Azure and ChatGLM)
	Host string `json:"host,omitempty" toml:"host"`

	// APIKey is the OpenAI/Claude key, the Azure resource key or the ChatboxAI license key
	APIKey string `json:"api_key,omitempty" toml:"api_key"`

	// Model is the model identifier; for Azure it is the deployment name
	Model string `json:"model" toml:"model"`

	// Temperature controls randomness (0.0-2.0)
	Temperature *float64 `json:"temperature,omitempty" toml:"temperature"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0)
	TopP *float64 `json:"top_p,omitempty" toml:"top_p"`

	// MaxTokens sets the maximum number of tokens to generate
	MaxTokens *int `json:"max_tokens,omitempty" toml:"max_tokens"`

	// ===== Provider-Specific =====

	// AzureAPIVersion is the api-version query parameter for Azure OpenAI
	AzureAPIVersion string `json:"azure_api_version,omitempty" toml:"azure_api_version"`

	// InstanceID identifies this client installation to ChatboxAI
	InstanceID string `json:"instance_id,omitempty" toml:"instance_id"`

	// ===== Context Window =====

	// MaxContextMessages caps the number of history messages submitted (0 = unlimited)
	MaxContextMessages int `json:"max_context_messages,omitempty" toml:"max_context_messages"`

	// MaxContextTokens caps the estimated tokens submitted (0 = derive from the model catalog)
	MaxContextTokens int `json:"max_context_tokens,omitempty" toml:"max_context_tokens"`
}

// GetMaxTokens returns max_tokens with default fallback
func (s *Settings) GetMaxTokens(defaultValue int) int {
	if s.MaxTokens != nil {
		return *s.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback
func (s *Settings) GetTemperature(defaultValue float64) float64 {
	if s.Temperature != nil {
		return *s.Temperature
	}
	return defaultValue
}

// GetTopP returns top_p with default fallback
func (s *Settings) GetTopP(defaultValue float64) float64 {
	if s.TopP != nil {
		return *s.TopP
	}
	return defaultValue
}

// GetAzureAPIVersion returns the Azure api-version with default fallback
func (s *Settings) GetAzureAPIVersion() string {
	if v := strings.TrimSpace(s.AzureAPIVersion); v != "" {
		return v
	}
	return DefaultAzureAPIVersion
}

// HostOr returns the configured host without a trailing slash, or fallback when unset
func (s *Settings) HostOr(fallback string) string {
	host := strings.TrimSpace(s.Host)
	if host == "" {
		host = fallback
	}
	return strings.TrimRight(host, "/")
}

// ContextLimit returns the history limit for these settings.
// When no token cap is configured, the model catalog's context window minus the
// reply budget is used for models it knows about. An unset MaxTokens still
// reserves DefaultMaxTokens, capped at the model's output limit.
func (s *Settings) ContextLimit() ContextLimit {
	limit := ContextLimit{
		MaxMessages: s.MaxContextMessages,
		MaxTokens:   s.MaxContextTokens,
	}
	if limit.MaxTokens > 0 {
		return limit
	}

	model, err := GetCatalogRegistry().GetModel(s.Provider, s.Model)
	if err != nil || model.ContextWindow <= 0 {
		return limit
	}

	budget := model.ContextWindow - s.replyReserve(model)
	if budget > 0 {
		limit.MaxTokens = budget
	}
	return limit
}

func (s *Settings) replyReserve(model *ModelInfo) int {
	reserve := DefaultMaxTokens
	if model.MaxOutputTokens > 0 && model.MaxOutputTokens < reserve {
		reserve = model.MaxOutputTokens
	}
	return s.GetMaxTokens(reserve)
}
