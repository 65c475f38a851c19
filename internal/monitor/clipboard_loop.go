package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/aleister1102/zeroleaks/internal/clipboard"
	"github.com/rs/zerolog"
)

// ClipboardHandler receives clipboard text that changed since the last tick.
type ClipboardHandler func(text string)

// ClipboardWatchLoop samples the clipboard and reports new non-blank content.
// One loop instance is driven by at most one goroutine at a time.
type ClipboardWatchLoop struct {
	reader   clipboard.Reader
	interval time.Duration
	onChange ClipboardHandler
	logger   zerolog.Logger

	last string
}

// NewClipboardWatchLoop creates a loop. A non-positive interval means one
// second.
func NewClipboardWatchLoop(reader clipboard.Reader, interval time.Duration, onChange ClipboardHandler, logger zerolog.Logger) *ClipboardWatchLoop {
	if interval <= 0 {
		interval = time.Second
	}
	return &ClipboardWatchLoop{
		reader:   reader,
		interval: interval,
		onChange: onChange,
		logger:   logger.With().Str("component", "ClipboardWatchLoop").Logger(),
	}
}

// Run polls until ctx is cancelled. The first sample is taken immediately,
// so content already on the clipboard at start is scanned.
func (l *ClipboardWatchLoop) Run(ctx context.Context) error {
	l.logger.Info().Dur("interval", l.interval).Msg("Clipboard monitor started")
	defer l.logger.Info().Msg("Clipboard monitor stopped")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Poll()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll takes one sample.
func (l *ClipboardWatchLoop) Poll() {
	text, err := l.reader.ReadText()
	if err != nil {
		l.logger.Error().Err(err).Msg("Clipboard read failed")
		return
	}
	if text == l.last {
		return
	}
	l.last = text
	if strings.TrimSpace(text) == "" {
		return
	}
	l.onChange(text)
}
