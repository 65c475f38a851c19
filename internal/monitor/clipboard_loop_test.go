package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/zeroleaks/internal/clipboard"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenTexts struct {
	mu    sync.Mutex
	texts []string
}

func (s *seenTexts) add(text string) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
}

func (s *seenTexts) get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func TestClipboardWatchLoop_Poll(t *testing.T) {
	reader := &clipboard.StaticReader{}
	seen := &seenTexts{}
	loop := NewClipboardWatchLoop(reader, time.Second, seen.add, zerolog.Nop())

	reader.Set("first copy")
	loop.Poll()
	loop.Poll()

	reader.Set("   \n\t")
	loop.Poll()

	reader.Fail(errors.New("clipboard locked"))
	loop.Poll()

	reader.Set("first copy")
	loop.Poll()

	reader.Set("second copy")
	loop.Poll()

	// Blank content still became the last observed value, so the repeated
	// "first copy" counts as a change.
	assert.Equal(t, []string{"first copy", "first copy", "second copy"}, seen.get())
}

func TestClipboardWatchLoop_RunScansExistingContent(t *testing.T) {
	reader := &clipboard.StaticReader{}
	reader.Set("already there")
	seen := &seenTexts{}
	loop := NewClipboardWatchLoop(reader, 20*time.Millisecond, seen.add, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return len(seen.get()) == 1 }, waitFor, tick)
	reader.Set("changed")
	require.Eventually(t, func() bool { return len(seen.get()) == 2 }, waitFor, tick)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("loop did not observe cancellation")
	}
	assert.Equal(t, []string{"already there", "changed"}, seen.get())
}

func TestClipboardWatchLoop_DefaultInterval(t *testing.T) {
	loop := NewClipboardWatchLoop(&clipboard.StaticReader{}, 0, func(string) {}, zerolog.Nop())
	assert.Equal(t, time.Second, loop.interval)
}
