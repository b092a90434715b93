package chatreply

import "sync"

// ValidationEngine runs a fixed set of advisory rules over a prepared request
type ValidationEngine struct {
	mu    sync.RWMutex
	rules []ValidationRule
}

var (
	defaultEngine     *ValidationEngine
	defaultEngineOnce sync.Once
)

// GetValidationEngine returns the engine bound to the global catalog
func GetValidationEngine() *ValidationEngine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewValidationEngine(GetCatalogRegistry())
	})
	return defaultEngine
}

// NewValidationEngine returns an engine with the model, credential, vision and
// parameter rules checking against catalog.
func NewValidationEngine(catalog *CatalogRegistry) *ValidationEngine {
	return &ValidationEngine{
		rules: []ValidationRule{
			&ModelValidationRule{catalog: catalog},
			&CredentialValidationRule{catalog: catalog},
			&VisionValidationRule{catalog: catalog},
			&ParameterValidationRule{catalog: catalog},
		},
	}
}

// AddRule appends a custom rule; it runs after the built-in ones
func (ve *ValidationEngine) AddRule(rule ValidationRule) {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	ve.rules = append(ve.rules, rule)
}

// Validate collects the warnings of every rule, in rule order
func (ve *ValidationEngine) Validate(req *ReplyRequest) []ValidationWarning {
	ve.mu.RLock()
	defer ve.mu.RUnlock()

	var warnings []ValidationWarning
	for _, rule := range ve.rules {
		warnings = append(warnings, rule.Check(req)...)
	}
	return warnings
}

// GetValidationWarnings validates req with the global engine.
// Warnings never stop a request from being sent.
func GetValidationWarnings(req *ReplyRequest) []ValidationWarning {
	return GetValidationEngine().Validate(req)
}

// FilterWarningsBySeverity keeps the warnings whose severity is listed
func FilterWarningsBySeverity(warnings []ValidationWarning, severities ...Severity) []ValidationWarning {
	var out []ValidationWarning
	for _, w := range warnings {
		for _, s := range severities {
			if w.Severity == s {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

// FilterWarningsByCode keeps the warnings whose code is listed
func FilterWarningsByCode(warnings []ValidationWarning, codes ...WarningCode) []ValidationWarning {
	var out []ValidationWarning
	for _, w := range warnings {
		for _, c := range codes {
			if w.Code == c {
				out = append(out, w)
				break
			}
		}
	}
	return out
}
