package config

// DetectorConfig selects the PII rules to run
type DetectorConfig struct {
	// EnabledTypes lists finding types to detect. Empty enables all rules.
	EnabledTypes []string `json:"enabled_types,omitempty" yaml:"enabled_types,omitempty" validate:"omitempty,dive,required"`
}

// NewDefaultDetectorConfig creates default detector configuration
func NewDefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{}
}
