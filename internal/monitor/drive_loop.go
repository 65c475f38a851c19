package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/zeroleaks/internal/drives"
	"github.com/rs/zerolog"
)

// DriveHandler is told about a drive root that was not known before. ctx is
// cancelled when the loop stops.
type DriveHandler func(ctx context.Context, root string)

// RemovableDriveWatchLoop polls for removable drives and reports newly
// attached ones. Drives stay known after they are detached, so a drive is
// announced once per process lifetime or until Reset.
type RemovableDriveWatchLoop struct {
	enumerator drives.Enumerator
	interval   time.Duration
	onNew      DriveHandler
	logger     zerolog.Logger

	mu    sync.RWMutex
	known map[string]struct{}
}

// NewRemovableDriveWatchLoop creates a loop. A non-positive interval means
// five seconds.
func NewRemovableDriveWatchLoop(enumerator drives.Enumerator, interval time.Duration, onNew DriveHandler, logger zerolog.Logger) *RemovableDriveWatchLoop {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &RemovableDriveWatchLoop{
		enumerator: enumerator,
		interval:   interval,
		onNew:      onNew,
		logger:     logger.With().Str("component", "RemovableDriveWatchLoop").Logger(),
		known:      make(map[string]struct{}),
	}
}

// Bootstrap marks every currently attached drive as known without
// announcing it and returns the attached roots.
func (l *RemovableDriveWatchLoop) Bootstrap() []string {
	roots, err := l.enumerator.ListRemovableDrives()
	if err != nil {
		l.logger.Error().Err(err).Msg("Initial drive enumeration failed")
		return nil
	}

	l.mu.Lock()
	for _, root := range roots {
		l.known[root] = struct{}{}
	}
	l.mu.Unlock()
	return roots
}

// Run polls until ctx is cancelled.
func (l *RemovableDriveWatchLoop) Run(ctx context.Context) error {
	l.logger.Info().Dur("interval", l.interval).Msg("External Drive Scanner started. Waiting for USB...")
	defer l.logger.Info().Msg("External Drive Scanner stopped")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Poll(ctx)
		}
	}
}

// Poll enumerates once and reports drives not seen before.
func (l *RemovableDriveWatchLoop) Poll(ctx context.Context) {
	roots, err := l.enumerator.ListRemovableDrives()
	if err != nil {
		l.logger.Error().Err(err).Msg("USB polling error")
		return
	}

	for _, root := range roots {
		l.mu.Lock()
		_, seen := l.known[root]
		if !seen {
			l.known[root] = struct{}{}
		}
		l.mu.Unlock()

		if seen {
			continue
		}
		l.logger.Debug().Str("drive", root).Msg("Drive not seen before")
		l.onNew(ctx, root)
	}
}

// Known returns the known drive roots, sorted.
func (l *RemovableDriveWatchLoop) Known() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	roots := make([]string, 0, len(l.known))
	for root := range l.known {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Reset forgets every known drive.
func (l *RemovableDriveWatchLoop) Reset() {
	l.mu.Lock()
	l.known = make(map[string]struct{})
	l.mu.Unlock()
}
