package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case ModeHeadless, ModeBackground:
			return true
		default:
			return false
		}
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure. Every
// failed rule is reported as a *common.ConfigurationError.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return common.NewConfigurationError("", "", "configuration is nil")
	}

	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	var collector common.ErrorCollector
	for _, e := range errs {
		collector.Add(fieldConfigurationError(e))
	}
	return common.WrapError(collector.Error(), "configuration validation failed")
}

// fieldConfigurationError splits GlobalConfig.<Section>.<Field> into the
// section and field of the returned error.
func fieldConfigurationError(e validator.FieldError) *common.ConfigurationError {
	fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
	section := ""
	if i := strings.LastIndex(fieldName, "."); i >= 0 {
		section, fieldName = fieldName[:i], fieldName[i+1:]
	}

	reason := fmt.Sprintf("failed rule '%s'", e.Tag())
	if e.Param() != "" {
		reason += fmt.Sprintf(" (expected: %s)", e.Param())
	}
	if e.Value() != nil && e.Value() != "" {
		reason += fmt.Sprintf(", actual: '%v'", e.Value())
	}
	return common.NewConfigurationError(section, fieldName, reason)
}
