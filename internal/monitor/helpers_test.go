package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/zeroleaks/internal/alerting"
	"github.com/aleister1102/zeroleaks/internal/clipboard"
	"github.com/aleister1102/zeroleaks/internal/config"
	"github.com/aleister1102/zeroleaks/internal/detector"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

type fakeEnumerator struct {
	mu    sync.Mutex
	roots []string
	err   error
	calls int
}

func (f *fakeEnumerator) ListRemovableDrives() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.roots...), nil
}

func (f *fakeEnumerator) set(roots ...string) {
	f.mu.Lock()
	f.roots = roots
	f.err = nil
	f.mu.Unlock()
}

func (f *fakeEnumerator) fail(msg string) {
	f.mu.Lock()
	f.err = errors.New(msg)
	f.mu.Unlock()
}

func testMonitorConfig() config.MonitorConfig {
	cfg := config.NewDefaultMonitorConfig()
	cfg.DebounceMs = 20
	cfg.ClipboardIntervalMs = 50
	cfg.DriveIntervalSeconds = 1
	cfg.StopTimeoutSeconds = 2
	return cfg
}

type testEnv struct {
	coord     *Coordinator
	sink      *alerting.Recorder
	drives    *fakeEnumerator
	clipboard *clipboard.StaticReader
}

func newTestEnv(t *testing.T, paths ...string) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil, paths...)
}

// newTestEnvWith lets a test adjust the coordinator options before New.
func newTestEnvWith(t *testing.T, adjust func(*Options), paths ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		sink:      &alerting.Recorder{},
		drives:    &fakeEnumerator{},
		clipboard: &clipboard.StaticReader{},
	}
	opts := Options{
		Config:     testMonitorConfig(),
		Mode:       config.ModeHeadless,
		Paths:      paths,
		Detector:   detector.NewRegexDetector(nil, zerolog.Nop()),
		Enumerator: env.drives,
		Clipboard:  env.clipboard,
		Sink:       env.sink,
		Logger:     zerolog.Nop(),
	}
	if adjust != nil {
		adjust(&opts)
	}
	coord, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(coord.Shutdown)
	env.coord = coord
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func sources(batches []alerting.Batch) []string {
	out := make([]string, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.Source)
	}
	return out
}

func hasSource(r *alerting.Recorder, source string) bool {
	for _, b := range r.Batches() {
		if b.Source == source {
			return true
		}
	}
	return false
}

func containsMessage(r *alerting.Recorder, substr string) bool {
	for _, m := range r.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// canonicalDir resolves symlinks so paths compare equal to the watcher's
// (macOS tmp dirs live behind /var -> /private/var).
func canonicalDir(t *testing.T, dir string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}
