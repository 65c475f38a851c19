// Package dedup suppresses repeated alerts for the same finding within a
// cooldown window.
package dedup

import (
	"sync"
	"time"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
)

const shardCount = 64

// shard is one stripe of the alert history.
type shard struct {
	mu   sync.Mutex
	last map[Key]time.Time
}

// Deduplicator filters findings already alerted within the cooldown for the
// same (source, type, value). It is safe for concurrent use; the
// read-compare-write for a key happens under that key's stripe lock.
type Deduplicator struct {
	cooldown   time.Duration
	maxEntries int
	logger     zerolog.Logger
	shards     [shardCount]*shard
}

// Options configures a Deduplicator.
type Options struct {
	Cooldown time.Duration
	// MaxEntries triggers an early sweep once the history grows past it.
	// Zero disables the check.
	MaxEntries int
	Logger     zerolog.Logger
}

// New creates a Deduplicator.
func New(opts Options) *Deduplicator {
	d := &Deduplicator{
		cooldown:   opts.Cooldown,
		maxEntries: opts.MaxEntries,
		logger:     opts.Logger.With().Str("component", "Deduplicator").Logger(),
	}
	for i := range d.shards {
		d.shards[i] = &shard{last: make(map[Key]time.Time)}
	}
	return d
}

// Cooldown returns the configured cooldown
func (d *Deduplicator) Cooldown() time.Duration {
	return d.cooldown
}

// FilterNew returns the findings not alerted within the cooldown for source,
// in their original order, and records now for each returned key.
func (d *Deduplicator) FilterNew(source string, findings []models.Finding, now time.Time) []models.Finding {
	surviving := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if d.admit(NewKey(source, f.Type, f.Value), now) {
			surviving = append(surviving, f)
		}
	}

	if len(surviving) < len(findings) {
		d.logger.Debug().
			Str("source", source).
			Int("suppressed", len(findings)-len(surviving)).
			Msg("Suppressed findings within cooldown")
	}

	if d.maxEntries > 0 && len(surviving) > 0 && d.Len() > d.maxEntries {
		removed := d.Sweep(now)
		d.logger.Debug().Int("removed", removed).Int("max_entries", d.maxEntries).Msg("Alert history over limit, swept stale keys")
	}

	return surviving
}

// admit performs the atomic check-and-set for a single key.
func (d *Deduplicator) admit(key Key, now time.Time) bool {
	s := d.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.last[key]
	if seen && now.Sub(last) <= d.cooldown {
		return false
	}
	s.last[key] = now
	return true
}

// Sweep drops keys whose cooldown has already elapsed at now. Such keys
// would be admitted anyway, so sweeping never changes what FilterNew
// returns for any later time.
func (d *Deduplicator) Sweep(now time.Time) int {
	removed := 0
	for _, s := range d.shards {
		s.mu.Lock()
		for key, last := range s.last {
			if now.Sub(last) > d.cooldown {
				delete(s.last, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of keys in the history.
func (d *Deduplicator) Len() int {
	total := 0
	for _, s := range d.shards {
		s.mu.Lock()
		total += len(s.last)
		s.mu.Unlock()
	}
	return total
}

// Reset forgets all history.
func (d *Deduplicator) Reset() {
	for _, s := range d.shards {
		s.mu.Lock()
		s.last = make(map[Key]time.Time)
		s.mu.Unlock()
	}
}

func (d *Deduplicator) shardFor(key Key) *shard {
	return d.shards[int(key[0])%shardCount]
}
