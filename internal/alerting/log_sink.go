package alerting

import (
	"fmt"
	"strings"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
)

// LogSinkOptions configures a LogSink.
type LogSinkOptions struct {
	MaskValues bool
}

// LogSink writes alerts to a zerolog logger. Each batch is narrated as a
// headline plus one line per finding, and every finding is also emitted as
// a structured event.
type LogSink struct {
	logger     zerolog.Logger
	maskValues bool
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger, opts LogSinkOptions) *LogSink {
	return &LogSink{
		logger:     logger.With().Str("component", "AlertSink").Logger(),
		maskValues: opts.MaskValues,
	}
}

// LogBatch logs a non-empty batch at warn level.
func (s *LogSink) LogBatch(source string, findings []models.Finding) {
	if len(findings) == 0 {
		return
	}

	s.logger.Warn().
		Str("source", source).
		Int("findings", len(findings)).
		Msg(FormatBatch(source, s.present(findings)))

	for _, f := range s.present(findings) {
		s.logger.Warn().
			Str("source", source).
			Str("source_kind", string(models.KindOfSource(source))).
			Str("type", f.Type).
			Str("value", f.Value).
			Str("method", f.MethodOrUnknown()).
			Msg("Sensitive data finding")
	}
}

func (s *LogSink) Info(msg string) {
	s.logger.Info().Msg(msg)
}

func (s *LogSink) Warning(msg string) {
	s.logger.Warn().Msg(msg)
}

func (s *LogSink) Error(msg string) {
	s.logger.Error().Msg(msg)
}

func (s *LogSink) present(findings []models.Finding) []models.Finding {
	if !s.maskValues {
		return findings
	}
	masked := make([]models.Finding, len(findings))
	for i, f := range findings {
		masked[i] = f.Masked()
	}
	return masked
}

// FormatBatch renders the human-readable alert text for a batch.
func FormatBatch(source string, findings []models.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SENSITIVE DATA DETECTED in %s!", source)
	for _, f := range findings {
		fmt.Fprintf(&b, "\n  [%s] %s (via %s)", f.Type, f.Value, f.MethodOrUnknown())
	}
	return b.String()
}
