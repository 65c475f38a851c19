package detector

import (
	"strings"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
)

// RegexDetector scans text with a set of regex rules.
type RegexDetector struct {
	rules  []RegexRule
	logger zerolog.Logger
}

// NewRegexDetector creates a detector restricted to enabledTypes. An empty
// list enables every default rule; unknown types are logged and ignored.
func NewRegexDetector(enabledTypes []string, logger zerolog.Logger) *RegexDetector {
	componentLogger := logger.With().Str("component", "RegexDetector").Logger()
	return &RegexDetector{
		rules:  selectRules(enabledTypes, componentLogger),
		logger: componentLogger,
	}
}

// Rules returns the active rule types
func (d *RegexDetector) Rules() []string {
	types := make([]string, 0, len(d.rules))
	for _, rule := range d.rules {
		types = append(types, rule.Type)
	}
	return types
}

// Scan applies the rules to text and returns the findings, one per distinct
// (type, value) pair, ordered by rule then position.
func (d *RegexDetector) Scan(text string) []models.Finding {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var findings []models.Finding
	seen := make(map[string]struct{})

	for _, rule := range d.rules {
		for _, match := range rule.Regex.FindAllStringSubmatch(text, -1) {
			value := match[0]
			if len(match) > 1 && match[1] != "" {
				value = match[1]
			}
			if value == "" {
				continue
			}
			if rule.Validate != nil && !rule.Validate(value) {
				continue
			}

			key := rule.Type + "\x00" + value
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			findings = append(findings, models.Finding{
				Type:   rule.Type,
				Value:  value,
				Method: rule.Method,
			})
		}
	}

	return findings
}

func selectRules(enabledTypes []string, logger zerolog.Logger) []RegexRule {
	if len(enabledTypes) == 0 {
		return DefaultRules
	}

	wanted := make(map[string]struct{}, len(enabledTypes))
	for _, t := range enabledTypes {
		wanted[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}

	var rules []RegexRule
	for _, rule := range DefaultRules {
		if _, ok := wanted[rule.Type]; ok {
			rules = append(rules, rule)
			delete(wanted, rule.Type)
		}
	}
	for unknown := range wanted {
		logger.Warn().Str("type", unknown).Msg("Unknown finding type in detector configuration, ignoring")
	}
	return rules
}
