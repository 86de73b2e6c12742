package cohort

import "fmt"

// ConfigurationError reports a structurally invalid cohort definition:
// missing required fields, contradictory settings, or an unsupported
// variant. Retrying without changing the definition will fail again.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid cohort definition: " + e.Reason
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// EvaluationError reports that a reference inside an otherwise valid
// definition could not be resolved against the clinical store. Kind names
// the reference type (concept, encounter type, location) and ID the value
// that failed to resolve.
type EvaluationError struct {
	Kind string
	ID   int
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot resolve %s %d", e.Kind, e.ID)
}
