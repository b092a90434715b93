package chatreply

// Severity indicates how serious a validation warning is
type Severity string

const (
	SeverityInfo    Severity = "info"    // Informational (might be expected)
	SeverityWarning Severity = "warning" // Potentially problematic
	SeverityError   Severity = "error"   // Likely to cause API failure
)

// WarningCode is a machine-readable identifier for validation warnings
type WarningCode string

const (
	// Model warnings
	WarningCodeModelUnknown WarningCode = "MODEL_UNKNOWN"
	WarningCodeModelMissing WarningCode = "MODEL_MISSING"

	// Credential warnings
	WarningCodeAPIKeyMissing     WarningCode = "API_KEY_MISSING"
	WarningCodeHostMissing       WarningCode = "HOST_MISSING"
	WarningCodeInstanceIDMissing WarningCode = "INSTANCE_ID_MISSING"

	// Vision warnings
	WarningCodeVisionUnsupported WarningCode = "VISION_UNSUPPORTED"

	// Parameter warnings
	WarningCodeTemperatureOutOfRange WarningCode = "TEMPERATURE_OUT_OF_RANGE"
	WarningCodeTopPOutOfRange        WarningCode = "TOP_P_OUT_OF_RANGE"
	WarningCodeMaxTokensInvalid      WarningCode = "MAX_TOKENS_INVALID"
)

// ValidationWarning represents a potential issue that might cause API failure.
// These are informational - the library doesn't block requests based on warnings.
// Provider APIs are the source of truth for validation.
type ValidationWarning struct {
	Code     WarningCode // Machine-readable code
	Category string      // "model", "credentials", "parameter", "vision"
	Field    string      // Field that might cause issues
	Value    any         // The potentially problematic value
	Message  string      // Human-readable warning
	Severity Severity    // How serious this warning is
}

// ValidationRule interface allows adding custom validation logic
type ValidationRule interface {
	// Name returns a human-readable name for this rule
	Name() string

	// Check inspects a (sequenced) request and returns warnings
	Check(req *ReplyRequest) []ValidationWarning
}
