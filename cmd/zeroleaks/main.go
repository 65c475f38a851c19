package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aleister1102/zeroleaks/internal/alerting"
	"github.com/aleister1102/zeroleaks/internal/clipboard"
	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/aleister1102/zeroleaks/internal/config"
	"github.com/aleister1102/zeroleaks/internal/datastore"
	"github.com/aleister1102/zeroleaks/internal/detector"
	"github.com/aleister1102/zeroleaks/internal/drives"
	"github.com/aleister1102/zeroleaks/internal/logger"
	"github.com/aleister1102/zeroleaks/internal/monitor"
	"github.com/aleister1102/zeroleaks/internal/pathfilter"
	"github.com/rs/zerolog"
)

// userDirNames are watched under the home directory unless disabled.
var userDirNames = []string{"Desktop", "Documents", "Downloads"}

func main() {
	os.Exit(run())
}

func run() int {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 2
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not load global config using path '%s': %v\n", flags.GlobalConfigFile, err)
		return 1
	}
	applyFlags(gCfg, flags)

	if err := config.ValidateConfig(gCfg); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Configuration validation failed: %v\n", err)
		return 1
	}

	appLogger, err := logger.NewLoggerBuilder().WithConfig(gCfg.LogConfig).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return 1
	}
	defer appLogger.Close()
	zLogger := *appLogger.GetZerolog()
	zLogger.Info().Str("mode", gCfg.Mode).Msg("ZeroLeaks starting")

	exclusions := pathfilter.NewExclusions()
	exclusions.AddMatcher(logger.LogFileMatcher(gCfg.LogConfig.LogFile))

	sink, closers := buildSinks(gCfg, exclusions, zLogger)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				zLogger.Error().Err(err).Msg("Failed to close alert store")
			}
		}
	}()

	var enumerator drives.Enumerator
	if gCfg.MonitorConfig.WatchExternalDrives {
		enumerator = drives.NewPartitionEnumerator(gCfg.MonitorConfig.DriveMountRoots, zLogger)
	}

	var clipReader clipboard.Reader
	if gCfg.MonitorConfig.ClipboardEnabled {
		if clipboard.Supported() {
			clipReader = clipboard.NewSystemReader()
		} else {
			zLogger.Warn().Msg("No clipboard utility available, clipboard monitoring disabled")
		}
	}

	coord, err := monitor.New(monitor.Options{
		Config:     gCfg.MonitorConfig,
		Mode:       gCfg.Mode,
		Paths:      resolveWatchPaths(gCfg.MonitorConfig, flags, zLogger),
		Detector:   detector.NewRegexDetector(gCfg.DetectorConfig.EnabledTypes, zLogger),
		Enumerator: enumerator,
		Clipboard:  clipReader,
		Sink:       sink,
		Logger:     zLogger,
		Filter:     exclusions.ShouldScan,
	})
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to create monitor coordinator")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	manager := startConfigReload(ctx, flags, coord, zLogger)
	if manager != nil {
		defer manager.Close()
	}

	coord.ScanExisting(ctx)
	if ctx.Err() == nil {
		coord.StartFileWatch()
		if gCfg.MonitorConfig.WatchExternalDrives {
			coord.StartDriveWatch(ctx)
		}
		runClipboard(ctx, coord, gCfg, zLogger)
	}

	<-ctx.Done()
	coord.Shutdown()

	stats := coord.Stats()
	zLogger.Info().
		Int64("files_scanned", stats.FilesScanned).
		Int64("clipboard_scans", stats.ClipboardScans).
		Int64("alerts_raised", stats.AlertsRaised).
		Int64("alerts_suppressed", stats.AlertsSuppressed).
		Msg("ZeroLeaks stopped")
	return 0
}

// applyFlags lets command line flags override the loaded configuration.
func applyFlags(cfg *config.GlobalConfig, flags AppFlags) {
	if flags.Mode != "" {
		cfg.Mode = flags.Mode
	}
	if len(flags.Paths) > 0 {
		cfg.MonitorConfig.WatchPaths = append([]string(nil), flags.Paths...)
	}
	if flags.NoUserDirs {
		cfg.MonitorConfig.IncludeUserDirs = false
	}
	if flags.External {
		cfg.MonitorConfig.WatchExternalDrives = true
	}
	if flags.NoClipboard {
		cfg.MonitorConfig.ClipboardEnabled = false
	}
}

// resolveWatchPaths returns the configured paths, "." when none are set,
// plus the user directories that exist.
func resolveWatchPaths(cfg config.MonitorConfig, flags AppFlags, log zerolog.Logger) []string {
	paths := append([]string(nil), cfg.WatchPaths...)
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if !cfg.IncludeUserDirs || flags.NoUserDirs {
		return paths
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot resolve home directory, user directories not monitored")
		return paths
	}
	for _, name := range userDirNames {
		dir := filepath.Join(home, name)
		if common.IsDirectory(dir) {
			paths = append(paths, dir)
		}
	}
	return paths
}

// buildSinks assembles the log sink and any enabled alert stores. The files
// the stores write are added to exclusions.
func buildSinks(cfg *config.GlobalConfig, exclusions *pathfilter.Exclusions, log zerolog.Logger) (alerting.Sink, []io.Closer) {
	sinks := []alerting.Sink{alerting.NewLogSink(log, alerting.LogSinkOptions{MaskValues: cfg.MonitorConfig.MaskValues})}
	var closers []io.Closer

	if cfg.StorageConfig.JournalEnabled {
		journal, err := datastore.NewAlertJournal(cfg.StorageConfig.JournalPath, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize alert journal. Alerts will not be journaled.")
		} else {
			for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
				exclusions.AddFile(cfg.StorageConfig.JournalPath + suffix)
			}
			sinks = append(sinks, alerting.NewStoreSink("journal", journal, log))
			closers = append(closers, journal)
		}
	}

	if cfg.StorageConfig.ArchiveEnabled {
		archive, err := datastore.NewAlertArchive(&cfg.StorageConfig, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize alert archive. Alerts will not be archived.")
		} else {
			exclusions.AddDir(archive.Dir())
			sinks = append(sinks, alerting.NewStoreSink("archive", archive, log))
			closers = append(closers, archive)
		}
	}

	return alerting.NewFanout(sinks...), closers
}

// runClipboard blocks on the clipboard loop in headless mode and
// backgrounds it otherwise.
func runClipboard(ctx context.Context, coord *monitor.Coordinator, cfg *config.GlobalConfig, log zerolog.Logger) {
	if !cfg.MonitorConfig.ClipboardEnabled {
		return
	}
	if cfg.Mode != config.ModeHeadless {
		coord.StartClipboardWatch()
		return
	}
	if err := coord.RunClipboardWatch(ctx); err != nil {
		log.Warn().Err(err).Msg("Clipboard monitor exited")
	}
}

// startConfigReload watches the config file and re-syncs watch paths on
// change. Flags keep precedence over the reloaded file.
func startConfigReload(ctx context.Context, flags AppFlags, coord *monitor.Coordinator, log zerolog.Logger) *config.ConfigManager {
	path := config.GetConfigPath(flags.GlobalConfigFile)
	if path == "" {
		return nil
	}

	opts := config.DefaultConfigManagerOptions()
	opts.Logger = log
	opts.HotReloadEnabled = true
	manager, err := config.NewConfigManager(path, opts)
	if err != nil {
		log.Warn().Err(err).Msg("Config hot reload disabled")
		return nil
	}

	manager.OnReload(func(cfg *config.GlobalConfig) {
		applyFlags(cfg, flags)
		desired := append(resolveWatchPaths(cfg.MonitorConfig, flags, log), coord.KnownDrives()...)
		added, removed := coord.SyncPaths(desired)
		log.Info().Strs("added", added).Strs("removed", removed).Msg("Watch paths synced with reloaded configuration")
	})
	manager.StartHotReload(ctx)
	return manager
}
