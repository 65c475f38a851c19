package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	email = models.Finding{Type: "EMAIL", Value: "a@b.com", Method: "regex"}
	phone = models.Finding{Type: "PHONE", Value: "+1 555 0100", Method: "regex"}
	t0    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestDeduplicator(cooldown time.Duration) *Deduplicator {
	return New(Options{Cooldown: cooldown, Logger: zerolog.Nop()})
}

func TestNewKey(t *testing.T) {
	assert.Equal(t, NewKey("S", "EMAIL", "a@b.com"), NewKey("S", "EMAIL", "a@b.com"))
	assert.NotEqual(t, NewKey("S", "EMAIL", "a@b.com"), NewKey("T", "EMAIL", "a@b.com"))
	assert.NotEqual(t, NewKey("S", "EMAIL", "a@b.com"), NewKey("S", "USERNAME", "a@b.com"))
	assert.NotEqual(t, NewKey("a:b", "c", "d"), NewKey("a", "b:c", "d"))
	assert.Len(t, NewKey("S", "EMAIL", "x").String(), 64)
}

func TestFilterNew_Cooldown(t *testing.T) {
	d := newTestDeduplicator(10 * time.Second)

	first := d.FilterNew("S", []models.Finding{email}, t0)
	assert.Equal(t, []models.Finding{email}, first)

	within := d.FilterNew("S", []models.Finding{email}, t0.Add(5*time.Second))
	assert.Empty(t, within)

	atBoundary := d.FilterNew("S", []models.Finding{email}, t0.Add(10*time.Second))
	assert.Empty(t, atBoundary, "cooldown must strictly elapse")

	after := d.FilterNew("S", []models.Finding{email}, t0.Add(11*time.Second))
	assert.Equal(t, []models.Finding{email}, after)

	// the re-alert refreshed the timestamp
	assert.Empty(t, d.FilterNew("S", []models.Finding{email}, t0.Add(20*time.Second)))
}

func TestFilterNew_SuppressedDoesNotRefresh(t *testing.T) {
	d := newTestDeduplicator(10 * time.Second)

	require.Len(t, d.FilterNew("S", []models.Finding{email}, t0), 1)
	require.Empty(t, d.FilterNew("S", []models.Finding{email}, t0.Add(9*time.Second)))

	assert.Len(t, d.FilterNew("S", []models.Finding{email}, t0.Add(11*time.Second)), 1)
}

func TestFilterNew_KeyIsPerSourceTypeValue(t *testing.T) {
	d := newTestDeduplicator(time.Minute)
	require.Len(t, d.FilterNew("S", []models.Finding{email}, t0), 1)

	otherSource := d.FilterNew("T", []models.Finding{email}, t0)
	assert.Len(t, otherSource, 1)

	otherType := models.Finding{Type: "USERNAME", Value: email.Value}
	assert.Len(t, d.FilterNew("S", []models.Finding{otherType}, t0), 1)

	otherMethod := models.Finding{Type: email.Type, Value: email.Value, Method: "ml"}
	assert.Empty(t, d.FilterNew("S", []models.Finding{otherMethod}, t0), "method does not affect the key")
}

func TestFilterNew_MixedBatchKeepsOrder(t *testing.T) {
	d := newTestDeduplicator(time.Minute)
	require.Len(t, d.FilterNew("S", []models.Finding{email}, t0), 1)

	ssn := models.Finding{Type: "SSN", Value: "123-45-6789"}
	got := d.FilterNew("S", []models.Finding{phone, email, ssn}, t0.Add(time.Second))

	assert.Equal(t, []models.Finding{phone, ssn}, got)
}

func TestFilterNew_DuplicateWithinBatch(t *testing.T) {
	d := newTestDeduplicator(time.Minute)

	got := d.FilterNew("S", []models.Finding{email, email}, t0)

	assert.Equal(t, []models.Finding{email}, got)
}

func TestFilterNew_EmptyInput(t *testing.T) {
	d := newTestDeduplicator(time.Minute)

	got := d.FilterNew("S", nil, t0)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterNew_ConcurrentSubmissionsYieldOneSurvivor(t *testing.T) {
	d := newTestDeduplicator(time.Minute)
	const workers = 64

	var survivors int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got := d.FilterNew("S", []models.Finding{email}, t0)
			atomic.AddInt64(&survivors, int64(len(got)))
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), survivors)
	assert.Equal(t, 1, d.Len())
}

func TestSweep(t *testing.T) {
	d := newTestDeduplicator(10 * time.Second)
	d.FilterNew("S", []models.Finding{email}, t0)
	d.FilterNew("S", []models.Finding{phone}, t0.Add(8*time.Second))
	require.Equal(t, 2, d.Len())

	removed := d.Sweep(t0.Add(15 * time.Second))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, d.Len())
	assert.Empty(t, d.FilterNew("S", []models.Finding{phone}, t0.Add(15*time.Second)))
	assert.Len(t, d.FilterNew("S", []models.Finding{email}, t0.Add(15*time.Second)), 1)
}

func TestMaxEntriesTriggersSweep(t *testing.T) {
	d := New(Options{Cooldown: time.Second, MaxEntries: 1, Logger: zerolog.Nop()})

	d.FilterNew("S", []models.Finding{email}, t0)
	d.FilterNew("S", []models.Finding{phone}, t0.Add(5*time.Second))

	assert.Equal(t, 1, d.Len(), "the stale email key is swept once the cap is exceeded")
}

func TestReset(t *testing.T) {
	d := newTestDeduplicator(time.Minute)
	d.FilterNew("S", []models.Finding{email}, t0)

	d.Reset()

	assert.Zero(t, d.Len())
	assert.Len(t, d.FilterNew("S", []models.Finding{email}, t0), 1)
	assert.Equal(t, time.Minute, d.Cooldown())
}
