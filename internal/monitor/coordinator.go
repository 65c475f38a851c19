// Package monitor watches directories, the clipboard and removable drives
// for sensitive content and raises de-duplicated alerts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/zeroleaks/internal/alerting"
	"github.com/aleister1102/zeroleaks/internal/clipboard"
	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/aleister1102/zeroleaks/internal/config"
	"github.com/aleister1102/zeroleaks/internal/dedup"
	"github.com/aleister1102/zeroleaks/internal/detector"
	"github.com/aleister1102/zeroleaks/internal/drives"
	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/aleister1102/zeroleaks/internal/pathfilter"
	"github.com/rs/zerolog"
)

// Options configures a Coordinator.
type Options struct {
	Config config.MonitorConfig
	// Mode selects the dedup cooldown: config.ModeHeadless or
	// config.ModeBackground.
	Mode string
	// Paths seeds the watch-path set. Entries that are not existing
	// directories are logged and dropped. No scan is performed.
	Paths []string

	Detector   detector.Detector
	Enumerator drives.Enumerator
	Clipboard  clipboard.Reader
	Sink       alerting.Sink
	Logger     zerolog.Logger

	// Filter decides which files are scanned, by the file watch and by
	// directory scans. Defaults to pathfilter.ShouldScan.
	Filter func(path string) bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Stats is a snapshot of coordinator counters.
type Stats struct {
	FilesScanned     int64 `json:"files_scanned"`
	FileReadErrors   int64 `json:"file_read_errors"`
	ClipboardScans   int64 `json:"clipboard_scans"`
	FindingsDetected int64 `json:"findings_detected"`
	AlertsRaised     int64 `json:"alerts_raised"`
	AlertsSuppressed int64 `json:"alerts_suppressed"`
	HistoryEntries   int   `json:"history_entries"`
	WatchPaths       int   `json:"watch_paths"`
	KnownDrives      int   `json:"known_drives"`
}

type counters struct {
	filesScanned     atomic.Int64
	fileReadErrors   atomic.Int64
	clipboardScans   atomic.Int64
	findingsDetected atomic.Int64
	alertsRaised     atomic.Int64
	alertsSuppressed atomic.Int64
}

// Coordinator owns the watch-path set, the alert history and the three
// detection loops. All methods are safe for concurrent use.
type Coordinator struct {
	cfg        config.MonitorConfig
	mode       string
	detector   detector.Detector
	enumerator drives.Enumerator
	sink       alerting.Sink
	logger     zerolog.Logger
	now        func() time.Time
	filter     func(path string) bool

	dedup      *dedup.Deduplicator
	fileReader *common.FileReader
	files      *FileWatchController

	clipboardLoop *ClipboardWatchLoop
	clipboardTask *common.Task
	driveLoop     *RemovableDriveWatchLoop
	driveTask     *common.Task
	sweepTask     *common.Task

	pathsMu sync.RWMutex
	paths   map[string]struct{}
	order   []string

	// watchMu serialises file watch start, stop and restart. The file
	// handler never takes it.
	watchMu sync.Mutex
	// loopMu serialises clipboard and drive loop toggles.
	loopMu sync.Mutex

	stats counters
}

// New creates a coordinator with every loop stopped.
func New(opts Options) (*Coordinator, error) {
	if opts.Detector == nil {
		return nil, common.NewValidationError("detector", nil, "detector is required")
	}
	if opts.Sink == nil {
		return nil, common.NewValidationError("sink", nil, "alert sink is required")
	}
	mode := opts.Mode
	if mode == "" {
		mode = config.ModeHeadless
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	filter := opts.Filter
	if filter == nil {
		filter = pathfilter.ShouldScan
	}

	logger := opts.Logger.With().Str("component", "MonitorCoordinator").Logger()
	c := &Coordinator{
		cfg:        opts.Config,
		mode:       mode,
		detector:   opts.Detector,
		enumerator: opts.Enumerator,
		sink:       opts.Sink,
		logger:     logger,
		now:        now,
		filter:     filter,
		dedup: dedup.New(dedup.Options{
			Cooldown:   opts.Config.Cooldown(mode),
			MaxEntries: opts.Config.MaxHistoryEntries,
			Logger:     opts.Logger,
		}),
		fileReader:    common.NewFileReader(opts.Logger),
		clipboardTask: common.NewTask("clipboard", logger),
		driveTask:     common.NewTask("drives", logger),
		sweepTask:     common.NewTask("history-sweep", logger),
		paths:         make(map[string]struct{}),
	}

	c.files = NewFileWatchController(FileWatchOptions{
		Debounce: opts.Config.Debounce(),
		Handler:  c.handleFile,
		Filter:   filter,
		Logger:   opts.Logger,
	})
	if opts.Clipboard != nil {
		c.clipboardLoop = NewClipboardWatchLoop(opts.Clipboard, opts.Config.ClipboardInterval(), c.handleClipboard, opts.Logger)
	}
	if opts.Enumerator != nil {
		c.driveLoop = NewRemovableDriveWatchLoop(opts.Enumerator, opts.Config.DriveInterval(), c.handleNewDrive, opts.Logger)
	}

	for _, p := range opts.Paths {
		if _, err := c.insertPath(p); err != nil {
			c.reportPathError(err)
		}
	}

	c.logger.Debug().
		Str("mode", mode).
		Dur("cooldown", c.dedup.Cooldown()).
		Strs("paths", c.WatchPaths()).
		Msg("Coordinator created")
	return c, nil
}

// canonicalPath makes equal directories compare equal in the path set.
func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// insertPath adds path to the set and returns its canonical form. The
// error is a *common.PathError wrapping ErrNotDirectory or ErrAlreadyExists.
func (c *Coordinator) insertPath(path string) (string, error) {
	p := canonicalPath(path)
	if !common.IsDirectory(p) {
		return p, common.NewPathError(path, common.ErrNotDirectory)
	}

	c.pathsMu.Lock()
	defer c.pathsMu.Unlock()
	if _, exists := c.paths[p]; exists {
		return p, common.NewPathError(p, common.ErrAlreadyExists)
	}
	c.paths[p] = struct{}{}
	c.order = append(c.order, p)
	return p, nil
}

// deletePath removes p from the set; the error wraps ErrNotFound.
func (c *Coordinator) deletePath(p string) error {
	c.pathsMu.Lock()
	defer c.pathsMu.Unlock()
	if _, exists := c.paths[p]; !exists {
		return common.NewPathError(p, common.ErrNotFound)
	}
	delete(c.paths, p)
	for i, existing := range c.order {
		if existing == p {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// reportPathError narrates a rejected path change. Duplicates are only
// logged.
func (c *Coordinator) reportPathError(err error) {
	var pathErr *common.PathError
	if !errors.As(err, &pathErr) {
		c.sink.Error(err.Error())
		return
	}
	switch {
	case errors.Is(err, common.ErrNotDirectory):
		c.sink.Warning(fmt.Sprintf("Cannot add path, not a directory: %s", pathErr.Path))
	case errors.Is(err, common.ErrNotFound):
		c.sink.Warning(fmt.Sprintf("Path not found in monitor list: %s", pathErr.Path))
	case errors.Is(err, common.ErrAlreadyExists):
		c.logger.Debug().Str("path", pathErr.Path).Msg("Path already monitored")
	default:
		c.sink.Error(err.Error())
	}
}

// AddPath adds a directory to the watch set, restarts a running file watch
// and scans the directory's existing files. It returns false when path is
// not an existing directory or is already watched.
func (c *Coordinator) AddPath(path string) bool {
	return c.addPath(context.Background(), path)
}

func (c *Coordinator) addPath(ctx context.Context, path string) bool {
	p, err := c.insertPath(path)
	if err != nil {
		c.reportPathError(err)
		return false
	}
	c.sink.Info(fmt.Sprintf("Adding new monitoring path: %s", p))
	c.restartIfRunning()
	c.scanPath(ctx, p)
	return true
}

// RemovePath drops a directory from the watch set and restarts a running
// file watch with the remaining paths. It returns false when path is not
// watched.
func (c *Coordinator) RemovePath(path string) bool {
	p := canonicalPath(path)
	if err := c.deletePath(p); err != nil {
		c.reportPathError(err)
		return false
	}
	c.sink.Info(fmt.Sprintf("Removing monitoring path: %s", p))
	c.restartIfRunning()
	return true
}

// SyncPaths reconciles the watch set with paths: missing directories are
// added and scanned, extra ones removed, with at most one restart.
func (c *Coordinator) SyncPaths(paths []string) (added, removed []string) {
	desired := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		desired[canonicalPath(p)] = struct{}{}
	}

	for _, p := range c.WatchPaths() {
		if _, keep := desired[p]; !keep && c.deletePath(p) == nil {
			removed = append(removed, p)
			c.sink.Info(fmt.Sprintf("Removing monitoring path: %s", p))
		}
	}
	for _, p := range paths {
		canonical, err := c.insertPath(p)
		if err != nil {
			c.reportPathError(err)
			continue
		}
		added = append(added, canonical)
		c.sink.Info(fmt.Sprintf("Adding new monitoring path: %s", canonical))
	}

	if len(added) > 0 || len(removed) > 0 {
		c.restartIfRunning()
	}
	for _, p := range added {
		c.scanPath(context.Background(), p)
	}
	return added, removed
}

func (c *Coordinator) restartIfRunning() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if !c.files.IsRunning() {
		return
	}
	if !c.files.Restart(c.WatchPaths()) {
		c.sink.Warning("File watch stopped: no valid directories remain")
	}
}

// StartFileWatch starts watching the current path set. It is a no-op
// returning true when already running.
func (c *Coordinator) StartFileWatch() bool {
	c.ensureSweeper()

	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.files.IsRunning() {
		return true
	}
	if !c.files.Start(c.WatchPaths()) {
		c.sink.Warning("File system monitor not started: no valid directories")
		return false
	}
	c.sink.Info(fmt.Sprintf("File system monitor started on: %v", c.files.Paths()))
	return true
}

// StopFileWatch stops the file watch and waits for it to wind down.
func (c *Coordinator) StopFileWatch() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	c.files.Stop()
}

// RunClipboardWatch runs the clipboard loop on the calling goroutine until
// ctx is cancelled or StopClipboardWatch is called.
func (c *Coordinator) RunClipboardWatch(ctx context.Context) error {
	if c.clipboardLoop == nil {
		return common.WrapError(common.ErrInvalidInput, "no clipboard reader configured")
	}
	c.ensureSweeper()
	return c.clipboardTask.Run(ctx, c.clipboardLoop.Run)
}

// StartClipboardWatch runs the clipboard loop in the background and returns
// its task, or nil when no clipboard reader is configured.
func (c *Coordinator) StartClipboardWatch() *common.Task {
	if c.clipboardLoop == nil {
		c.sink.Warning("Clipboard monitor unavailable: no clipboard reader")
		return nil
	}
	c.ensureSweeper()

	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	c.clipboardTask.Start(context.Background(), c.clipboardLoop.Run)
	return c.clipboardTask
}

// StopClipboardWatch stops the clipboard loop, waiting up to the configured
// stop timeout.
func (c *Coordinator) StopClipboardWatch() {
	if !c.clipboardTask.Stop(c.cfg.StopTimeout()) {
		c.logger.Warn().Msg("Clipboard monitor did not stop within timeout")
	}
}

// StartDriveWatch marks attached drives as known, adds them as watch paths
// without announcing them, and starts polling for new ones. The attached
// drives are scanned by the drive task before its first poll, so the scan
// ends with ctx or StopDriveWatch.
func (c *Coordinator) StartDriveWatch(ctx context.Context) bool {
	if c.driveLoop == nil {
		c.sink.Warning("External Drive Scanner unavailable: no drive enumerator")
		return false
	}

	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.driveTask.IsRunning() {
		return true
	}
	c.ensureSweeper()

	var attached []string
	for _, root := range c.driveLoop.Bootstrap() {
		p, err := c.insertPath(root)
		if err != nil {
			c.reportPathError(err)
			continue
		}
		c.sink.Info(fmt.Sprintf("Adding new monitoring path: %s", p))
		attached = append(attached, p)
	}
	if len(attached) > 0 {
		c.restartIfRunning()
	}

	c.driveTask.Start(ctx, func(ctx context.Context) error {
		for _, root := range attached {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.scanPath(ctx, root)
		}
		return c.driveLoop.Run(ctx)
	})
	c.sink.Info("External Drive Scanner is Active.")
	return true
}

// StopDriveWatch stops drive polling. Known drives are kept.
func (c *Coordinator) StopDriveWatch() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if !c.driveTask.IsRunning() {
		return
	}
	if !c.driveTask.Stop(c.cfg.StopTimeout()) {
		c.logger.Warn().Msg("External Drive Scanner did not stop within timeout")
		return
	}
	c.sink.Info("External Drive Scanner stopped.")
}

// ScanExisting scans every file already present under the watch paths.
func (c *Coordinator) ScanExisting(ctx context.Context) {
	for _, p := range c.WatchPaths() {
		if ctx.Err() != nil {
			return
		}
		c.scanPath(ctx, p)
	}
	c.sink.Info("Initial scan completed.")
}

// Shutdown stops every loop and forgets known drives. It may be called
// more than once.
func (c *Coordinator) Shutdown() {
	c.StopClipboardWatch()
	c.StopDriveWatch()
	c.StopFileWatch()
	c.sweepTask.Stop(c.cfg.StopTimeout())
	if c.driveLoop != nil {
		c.driveLoop.Reset()
	}
	c.sink.Info("Monitors stopped.")
}

// WatchPaths returns the watch set in insertion order.
func (c *Coordinator) WatchPaths() []string {
	c.pathsMu.RLock()
	defer c.pathsMu.RUnlock()
	return append([]string(nil), c.order...)
}

// KnownDrives returns the drive roots seen by the drive loop.
func (c *Coordinator) KnownDrives() []string {
	if c.driveLoop == nil {
		return nil
	}
	return c.driveLoop.Known()
}

func (c *Coordinator) IsFileWatchRunning() bool      { return c.files.IsRunning() }
func (c *Coordinator) IsClipboardWatchRunning() bool { return c.clipboardTask.IsRunning() }
func (c *Coordinator) IsDriveWatchRunning() bool     { return c.driveTask.IsRunning() }

// Mode returns the operating mode.
func (c *Coordinator) Mode() string {
	return c.mode
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	c.pathsMu.RLock()
	watchPaths := len(c.order)
	c.pathsMu.RUnlock()

	return Stats{
		FilesScanned:     c.stats.filesScanned.Load(),
		FileReadErrors:   c.stats.fileReadErrors.Load(),
		ClipboardScans:   c.stats.clipboardScans.Load(),
		FindingsDetected: c.stats.findingsDetected.Load(),
		AlertsRaised:     c.stats.alertsRaised.Load(),
		AlertsSuppressed: c.stats.alertsSuppressed.Load(),
		HistoryEntries:   c.dedup.Len(),
		WatchPaths:       watchPaths,
		KnownDrives:      len(c.KnownDrives()),
	}
}

// ensureSweeper starts the periodic alert-history sweep once.
func (c *Coordinator) ensureSweeper() {
	interval := c.cfg.SweepInterval()
	c.sweepTask.Start(context.Background(), func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if n := c.dedup.Sweep(c.now()); n > 0 {
					c.logger.Debug().Int("removed", n).Int("remaining", c.dedup.Len()).Msg("Swept alert history")
				}
			}
		}
	})
}

// scanPath walks root and runs every eligible file through the pipeline.
func (c *Coordinator) scanPath(ctx context.Context, root string) {
	c.logger.Info().Str("path", root).Msg("Performing initial scan")

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.logger.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && pathfilter.IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.filter(path) {
			c.handleFile(ctx, path)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("path", root).Msg("Initial scan interrupted")
	}
}

// handleFile reads, scans and reports one file. Read errors are logged and
// the file is skipped.
func (c *Coordinator) handleFile(ctx context.Context, path string) {
	opts := common.DefaultFileReadOptions()
	opts.Context = ctx
	opts.MaxSize = c.cfg.MaxFileSize()

	c.logger.Info().Str("path", path).Msg("Scanning file")
	text, err := c.fileReader.ReadText(path, opts)
	if err != nil {
		c.stats.fileReadErrors.Add(1)
		c.logger.Error().Err(err).Str("path", path).Msg("Error reading file")
		return
	}
	c.stats.filesScanned.Add(1)

	findings := c.detector.Scan(text)
	if len(findings) == 0 {
		return
	}
	c.report(c.fileSource(path), findings)
}

// fileSource labels path as a USB file when it lies under an attached
// removable drive.
func (c *Coordinator) fileSource(path string) string {
	if c.enumerator == nil {
		return models.FileSource(path, false)
	}
	roots, err := c.enumerator.ListRemovableDrives()
	if err != nil {
		c.logger.Debug().Err(err).Msg("Drive enumeration failed while labelling file")
		return models.FileSource(path, false)
	}
	return models.FileSource(path, drives.UnderAny(path, roots))
}

func (c *Coordinator) handleClipboard(text string) {
	c.stats.clipboardScans.Add(1)
	findings := c.detector.Scan(text)
	if len(findings) == 0 {
		return
	}
	c.report(models.ClipboardSource, findings)
}

func (c *Coordinator) handleNewDrive(ctx context.Context, root string) {
	c.sink.Info(fmt.Sprintf("New external drive detected: %s", root))
	c.addPath(ctx, root)
}

// report de-duplicates findings for source and forwards the survivors.
func (c *Coordinator) report(source string, findings []models.Finding) {
	c.stats.findingsDetected.Add(int64(len(findings)))

	survivors := c.dedup.FilterNew(source, findings, c.now())
	c.stats.alertsSuppressed.Add(int64(len(findings) - len(survivors)))
	if len(survivors) == 0 {
		c.logger.Debug().Str("source", source).Int("suppressed", len(findings)).Msg("All findings within cooldown")
		return
	}
	c.stats.alertsRaised.Add(int64(len(survivors)))
	c.sink.LogBatch(source, survivors)
}
