package chatreply

import (
	"fmt"
	"strings"
)

// ModelValidationRule checks model-related warnings
type ModelValidationRule struct {
	catalog *CatalogRegistry
}

func (r *ModelValidationRule) Name() string {
	return "Model Validation"
}

func (r *ModelValidationRule) Check(req *ReplyRequest) []ValidationWarning {
	var warnings []ValidationWarning
	s := req.Settings

	// ChatGLM ignores the model name entirely
	if s.Provider == ProviderChatGLM {
		return warnings
	}

	if strings.TrimSpace(s.Model) == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelMissing,
			Category: "model",
			Field:    "model",
			Value:    s.Model,
			Message:  fmt.Sprintf("No model set for %s", s.Provider),
			Severity: SeverityError,
		})
		return warnings
	}

	// Azure deployments carry arbitrary names, so an unknown one is expected
	if s.Provider == ProviderAzure {
		return warnings
	}

	if !r.catalog.KnowsModel(s.Provider, s.Model) {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelUnknown,
			Category: "model",
			Field:    "model",
			Value:    s.Model,
			Message:  fmt.Sprintf("Model %s not found in %s catalog (catalog may be outdated)", s.Model, s.Provider),
			Severity: SeverityInfo,
		})
	}

	return warnings
}

// CredentialValidationRule checks that providers which need a key or host have one
type CredentialValidationRule struct {
	catalog *CatalogRegistry
}

func (r *CredentialValidationRule) Name() string {
	return "Credential Validation"
}

func (r *CredentialValidationRule) Check(req *ReplyRequest) []ValidationWarning {
	var warnings []ValidationWarning
	s := req.Settings

	catalog, err := r.catalog.GetProviderCatalog(s.Provider)
	if err != nil {
		// Can't check without a catalog
		return warnings
	}

	if catalog.Constraints.RequiresAPIKey && strings.TrimSpace(s.APIKey) == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeAPIKeyMissing,
			Category: "credentials",
			Field:    "api_key",
			Message:  fmt.Sprintf("%s requires an API key", s.Provider),
			Severity: SeverityError,
		})
	}

	if catalog.Constraints.RequiresHost && strings.TrimSpace(s.Host) == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeHostMissing,
			Category: "credentials",
			Field:    "host",
			Message:  fmt.Sprintf("%s requires a host", s.Provider),
			Severity: SeverityError,
		})
	}

	if s.Provider == ProviderChatboxAI && strings.TrimSpace(s.InstanceID) == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeInstanceIDMissing,
			Category: "credentials",
			Field:    "instance_id",
			Message:  "ChatboxAI requests are usually sent with an Instance-Id",
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// VisionValidationRule checks picture-related warnings
type VisionValidationRule struct {
	catalog *CatalogRegistry
}

func (r *VisionValidationRule) Name() string {
	return "Vision Validation"
}

func (r *VisionValidationRule) Check(req *ReplyRequest) []ValidationWarning {
	var warnings []ValidationWarning
	s := req.Settings

	pictures := 0
	for _, msg := range req.Messages {
		pictures += len(msg.Pictures)
	}
	if pictures == 0 {
		return warnings
	}

	info, err := r.catalog.GetModel(s.Provider, s.Model)
	if err != nil {
		// Can't check without catalog entry
		return warnings
	}

	if !info.Features.Vision {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeVisionUnsupported,
			Category: "vision",
			Field:    "messages",
			Value:    pictures,
			Message:  fmt.Sprintf("Model %s might not accept pictures", s.Model),
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// ParameterValidationRule checks sampling parameter warnings
type ParameterValidationRule struct {
	catalog *CatalogRegistry
}

func (r *ParameterValidationRule) Name() string {
	return "Parameter Validation"
}

func (r *ParameterValidationRule) Check(req *ReplyRequest) []ValidationWarning {
	var warnings []ValidationWarning
	s := req.Settings

	constraints := ProviderConstraints{
		TemperatureMin: 0.0,
		TemperatureMax: 2.0,
		TopPMin:        0.0,
		TopPMax:        1.0,
	}
	if catalog, err := r.catalog.GetProviderCatalog(s.Provider); err == nil {
		constraints = catalog.Constraints
	}

	if s.Temperature != nil {
		temp := *s.Temperature
		if temp < constraints.TemperatureMin || temp > constraints.TemperatureMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTemperatureOutOfRange,
				Category: "parameter",
				Field:    "temperature",
				Value:    temp,
				Message:  fmt.Sprintf("Temperature %.2f outside %s range [%.1f, %.1f]", temp, s.Provider, constraints.TemperatureMin, constraints.TemperatureMax),
				Severity: SeverityWarning,
			})
		}
	}

	if s.TopP != nil {
		topP := *s.TopP
		if topP < constraints.TopPMin || topP > constraints.TopPMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTopPOutOfRange,
				Category: "parameter",
				Field:    "top_p",
				Value:    topP,
				Message:  fmt.Sprintf("Top-P %.2f outside %s range [%.1f, %.1f]", topP, s.Provider, constraints.TopPMin, constraints.TopPMax),
				Severity: SeverityWarning,
			})
		}
	}

	if s.MaxTokens != nil && *s.MaxTokens < 1 {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMaxTokensInvalid,
			Category: "parameter",
			Field:    "max_tokens",
			Value:    *s.MaxTokens,
			Message:  "max_tokens should be positive",
			Severity: SeverityWarning,
		})
	}

	return warnings
}
