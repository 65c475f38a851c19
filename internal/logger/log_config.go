package logger

import (
	"path/filepath"
	"strings"
	"time"
)

// Default log settings
const (
	DefaultLogFile       = "dlp_log.log"
	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultMaxLogBackups = 3
	DefaultMaxLogSizeMB  = 100
)

// backupTimeFormat is the timestamp lumberjack puts in rotated file names.
const backupTimeFormat = "2006-01-02T15-04-05.000"

// FileLogConfig defines configuration for logging from a config file
type FileLogConfig struct {
	LogFile         string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat       string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel        string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups   int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
	MaxLogSizeMB    int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
	MaxLogAgeDays   int    `json:"max_log_age_days,omitempty" yaml:"max_log_age_days,omitempty" validate:"omitempty,min=0"`
	CompressBackups bool   `json:"compress_backups,omitempty" yaml:"compress_backups,omitempty"`
	DisableConsole  bool   `json:"disable_console,omitempty" yaml:"disable_console,omitempty"`
}

// NewDefaultFileLogConfig creates default log configuration
func NewDefaultFileLogConfig() FileLogConfig {
	return FileLogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}

// LogFileMatcher returns a predicate matching logFile and the backups the
// rotating writer leaves next to it (name-<timestamp>.ext, optionally .gz).
// It returns nil when logFile is empty.
func LogFileMatcher(logFile string) func(path string) bool {
	if logFile == "" {
		return nil
	}
	active := absPath(logFile)
	dir := filepath.Dir(active)
	base := filepath.Base(active)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "-"

	return func(path string) bool {
		p := absPath(path)
		if p == active {
			return true
		}
		if filepath.Dir(p) != dir {
			return false
		}
		name := strings.TrimSuffix(filepath.Base(p), ".gz")
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			return false
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		_, err := time.Parse(backupTimeFormat, stamp)
		return err == nil
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
