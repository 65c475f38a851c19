package models

import "strings"

// UnknownMethod is reported when a detector does not tag its findings.
const UnknownMethod = "Unknown"

// Finding is one detected instance of sensitive content.
type Finding struct {
	Type   string `json:"type" yaml:"type"`
	Value  string `json:"value" yaml:"value"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// MethodOrUnknown returns the detection method, or UnknownMethod when unset.
func (f Finding) MethodOrUnknown() string {
	if f.Method == "" {
		return UnknownMethod
	}
	return f.Method
}

// Masked returns a copy whose value keeps only its last four characters.
func (f Finding) Masked() Finding {
	runes := []rune(f.Value)
	if len(runes) <= 4 {
		f.Value = strings.Repeat("*", len(runes))
		return f
	}
	f.Value = strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
	return f
}
