package monitor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/aleister1102/zeroleaks/internal/pathfilter"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const fileQueueSize = 256

// FileHandler processes a file that settled after a create or write.
type FileHandler func(ctx context.Context, path string)

// FileWatchOptions configures a FileWatchController.
type FileWatchOptions struct {
	// Debounce is the per-path quiet period before Handler runs. Zero hands
	// events over immediately.
	Debounce time.Duration
	Handler  FileHandler
	// Filter defaults to pathfilter.ShouldScan.
	Filter func(path string) bool
	Logger zerolog.Logger
}

// FileWatchController owns at most one watch session over a snapshot of
// directories. Sessions are never mutated; a path change restarts them.
type FileWatchController struct {
	debounce time.Duration
	handler  FileHandler
	filter   func(path string) bool
	logger   zerolog.Logger

	mu      sync.Mutex
	session *watchSession
}

// NewFileWatchController creates a stopped controller.
func NewFileWatchController(opts FileWatchOptions) *FileWatchController {
	filter := opts.Filter
	if filter == nil {
		filter = pathfilter.ShouldScan
	}
	handler := opts.Handler
	if handler == nil {
		handler = func(context.Context, string) {}
	}
	return &FileWatchController{
		debounce: opts.Debounce,
		handler:  handler,
		filter:   filter,
		logger:   opts.Logger.With().Str("component", "FileWatchController").Logger(),
	}
}

// Start begins watching every existing directory in paths, recursively.
// It returns false and stays stopped when no directory could be registered.
// Start on a running controller is a no-op that returns true.
func (c *FileWatchController) Start(paths []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return true
	}

	session, err := c.newSession(paths)
	if err != nil {
		c.logger.Warn().Err(err).Strs("paths", paths).Msg("File watch not started")
		return false
	}
	c.session = session
	c.logger.Info().Strs("paths", session.paths).Msg("File system monitor started")
	return true
}

// Stop ends the current session and waits until all of its goroutines have
// exited. No-op when stopped.
func (c *FileWatchController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	c.session.close()
	c.session = nil
	c.logger.Info().Msg("File system monitor stopped")
}

// Restart stops the current session, if any, and starts one bound to paths.
func (c *FileWatchController) Restart(paths []string) bool {
	c.Stop()
	return c.Start(paths)
}

// IsRunning reports whether a session is active.
func (c *FileWatchController) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Paths returns the roots registered by the active session.
func (c *FileWatchController) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return append([]string(nil), c.session.paths...)
}

type watchSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher
	paths   []string
	queue   chan string
	wg      sync.WaitGroup

	debounce time.Duration
	handler  FileHandler
	filter   func(path string) bool
	logger   zerolog.Logger
}

func (c *FileWatchController) newSession(paths []string) (*watchSession, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, common.WrapError(err, "failed to create file watcher")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &watchSession{
		ctx:      ctx,
		cancel:   cancel,
		watcher:  watcher,
		queue:    make(chan string, fileQueueSize),
		debounce: c.debounce,
		handler:  c.handler,
		filter:   c.filter,
		logger:   c.logger,
	}

	for _, path := range paths {
		if !common.IsDirectory(path) {
			c.logger.Warn().Str("path", path).Msg("Directory not found, skipping")
			continue
		}
		if err := s.addRecursive(path, nil); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Failed to watch directory, skipping")
			continue
		}
		s.paths = append(s.paths, path)
	}

	if len(s.paths) == 0 {
		cancel()
		_ = watcher.Close()
		return nil, common.WrapError(common.ErrNotDirectory, "no valid directories to watch")
	}

	s.wg.Add(2)
	go s.eventLoop()
	go s.worker()
	return s, nil
}

// addRecursive registers root and every directory below it. Files found on
// the way are passed to onFile when it is non-nil.
func (s *watchSession) addRecursive(root string, onFile func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if onFile != nil {
				onFile(path)
			}
			return nil
		}
		if path != root && pathfilter.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			s.logger.Debug().Err(err).Str("path", path).Msg("Failed to watch subdirectory")
		}
		return nil
	})
}

func (s *watchSession) close() {
	s.cancel()
	if err := s.watcher.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("Error closing file watcher")
	}
	s.wg.Wait()
}

// eventLoop turns fsnotify events into debounced file paths. Pending paths
// are kept with their due time; the loop's single timer fires for the
// earliest one.
func (s *watchSession) eventLoop() {
	defer s.wg.Done()

	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	schedule := func(path string) {
		if !s.filter(path) {
			return
		}
		if s.debounce <= 0 {
			s.enqueue(path)
			return
		}
		pending[path] = time.Now().Add(s.debounce)
		resetToEarliest(timer, pending)
	}

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) && !pathfilter.IsIgnoredDir(info.Name()) {
					if err := s.addRecursive(event.Name, schedule); err != nil {
						s.logger.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
				}
				continue
			}
			schedule(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).Msg("File watcher error")

		case <-timer.C:
			for _, path := range duePaths(pending, time.Now()) {
				delete(pending, path)
				if !s.enqueue(path) {
					return
				}
			}
			resetToEarliest(timer, pending)
		}
	}
}

func (s *watchSession) enqueue(path string) bool {
	select {
	case s.queue <- path:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *watchSession) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case path := <-s.queue:
			s.handler(s.ctx, path)
		}
	}
}

func resetToEarliest(timer *time.Timer, pending map[string]time.Time) {
	if len(pending) == 0 {
		timer.Stop()
		return
	}
	var earliest time.Time
	for _, due := range pending {
		if earliest.IsZero() || due.Before(earliest) {
			earliest = due
		}
	}
	timer.Reset(time.Until(earliest))
}

// duePaths returns the pending paths whose quiet period has elapsed, in due
// order.
func duePaths(pending map[string]time.Time, now time.Time) []string {
	var due []string
	for path, at := range pending {
		if !at.After(now) {
			due = append(due, path)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return pending[due[i]].Before(pending[due[j]])
	})
	return due
}
