package alerting

import (
	"time"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
)

// StoreSink converts batches into alerts and hands them to an AlertWriter.
// Operational messages are ignored; write failures are logged.
type StoreSink struct {
	name   string
	writer AlertWriter
	logger zerolog.Logger
	now    func() time.Time
}

// NewStoreSink wraps writer. name identifies the store in logs.
func NewStoreSink(name string, writer AlertWriter, logger zerolog.Logger) *StoreSink {
	return &StoreSink{
		name:   name,
		writer: writer,
		logger: logger.With().Str("component", "StoreSink").Str("store", name).Logger(),
		now:    time.Now,
	}
}

func (s *StoreSink) LogBatch(source string, findings []models.Finding) {
	if len(findings) == 0 {
		return
	}
	alerts := models.NewAlerts(source, findings, s.now())
	if err := s.writer.WriteAlerts(alerts); err != nil {
		s.logger.Error().Err(err).Str("source", source).Int("alerts", len(alerts)).Msg("Failed to store alerts")
	}
}

func (s *StoreSink) Info(string)    {}
func (s *StoreSink) Warning(string) {}
func (s *StoreSink) Error(string)   {}
