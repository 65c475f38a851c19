// Package alerting delivers de-duplicated findings to their destinations.
package alerting

import (
	"github.com/aleister1102/zeroleaks/internal/models"
)

// Sink receives alert batches and operational messages.
// Implementations must be safe for concurrent use.
type Sink interface {
	LogBatch(source string, findings []models.Finding)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// AlertWriter persists flattened alerts.
type AlertWriter interface {
	WriteAlerts(alerts []models.Alert) error
}

// Fanout forwards every call to each of its sinks in order.
type Fanout []Sink

// NewFanout drops nil sinks.
func NewFanout(sinks ...Sink) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f Fanout) LogBatch(source string, findings []models.Finding) {
	if len(findings) == 0 {
		return
	}
	for _, s := range f {
		s.LogBatch(source, findings)
	}
}

func (f Fanout) Info(msg string) {
	for _, s := range f {
		s.Info(msg)
	}
}

func (f Fanout) Warning(msg string) {
	for _, s := range f {
		s.Warning(msg)
	}
}

func (f Fanout) Error(msg string) {
	for _, s := range f {
		s.Error(msg)
	}
}
