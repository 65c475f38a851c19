package config

import (
	"time"
)

// MonitorConfig defines configuration for the monitoring engine
type MonitorConfig struct {
	WatchPaths          []string `json:"watch_paths,omitempty" yaml:"watch_paths,omitempty" validate:"omitempty,dive,required"`
	IncludeUserDirs     bool     `json:"include_user_dirs" yaml:"include_user_dirs"`
	WatchExternalDrives bool     `json:"watch_external_drives" yaml:"watch_external_drives"`
	DriveMountRoots     []string `json:"drive_mount_roots,omitempty" yaml:"drive_mount_roots,omitempty" validate:"omitempty,dive,required"`
	ClipboardEnabled    bool     `json:"clipboard_enabled" yaml:"clipboard_enabled"`

	ClipboardIntervalMs       int `json:"clipboard_interval_ms,omitempty" yaml:"clipboard_interval_ms,omitempty" validate:"omitempty,min=50"`
	DriveIntervalSeconds      int `json:"drive_interval_seconds,omitempty" yaml:"drive_interval_seconds,omitempty" validate:"omitempty,min=1"`
	DebounceMs                int `json:"debounce_ms,omitempty" yaml:"debounce_ms,omitempty" validate:"omitempty,min=0"`
	HeadlessCooldownSeconds   int `json:"headless_cooldown_seconds,omitempty" yaml:"headless_cooldown_seconds,omitempty" validate:"omitempty,min=1"`
	BackgroundCooldownSeconds int `json:"background_cooldown_seconds,omitempty" yaml:"background_cooldown_seconds,omitempty" validate:"omitempty,min=1"`
	SweepIntervalSeconds      int `json:"sweep_interval_seconds,omitempty" yaml:"sweep_interval_seconds,omitempty" validate:"omitempty,min=1"`
	MaxHistoryEntries         int `json:"max_history_entries,omitempty" yaml:"max_history_entries,omitempty" validate:"omitempty,min=0"`
	MaxFileSizeBytes          int `json:"max_file_size_bytes,omitempty" yaml:"max_file_size_bytes,omitempty" validate:"omitempty,min=1"`
	StopTimeoutSeconds        int `json:"stop_timeout_seconds,omitempty" yaml:"stop_timeout_seconds,omitempty" validate:"omitempty,min=1"`

	MaskValues bool `json:"mask_values" yaml:"mask_values"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		WatchPaths:          []string{"."},
		IncludeUserDirs:     true,
		WatchExternalDrives: false,
		ClipboardEnabled:    true,

		ClipboardIntervalMs:       DefaultClipboardIntervalMs,
		DriveIntervalSeconds:      DefaultDriveIntervalSeconds,
		DebounceMs:                DefaultDebounceMs,
		HeadlessCooldownSeconds:   DefaultHeadlessCooldownSeconds,
		BackgroundCooldownSeconds: DefaultBackgroundCooldownSeconds,
		SweepIntervalSeconds:      DefaultSweepIntervalSeconds,
		MaxHistoryEntries:         0, // unbounded
		MaxFileSizeBytes:          DefaultMaxFileSizeBytes,
		StopTimeoutSeconds:        DefaultStopTimeoutSeconds,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ClipboardInterval is the clipboard polling period.
func (c MonitorConfig) ClipboardInterval() time.Duration {
	return time.Duration(orDefault(c.ClipboardIntervalMs, DefaultClipboardIntervalMs)) * time.Millisecond
}

// DriveInterval is the removable drive polling period.
func (c MonitorConfig) DriveInterval() time.Duration {
	return time.Duration(orDefault(c.DriveIntervalSeconds, DefaultDriveIntervalSeconds)) * time.Second
}

// Debounce is the per-path quiet period before a changed file is scanned.
// Zero disables debouncing.
func (c MonitorConfig) Debounce() time.Duration {
	if c.DebounceMs < 0 {
		return 0
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Cooldown returns the dedup window for the given operating mode.
func (c MonitorConfig) Cooldown(mode string) time.Duration {
	if mode == ModeBackground {
		return time.Duration(orDefault(c.BackgroundCooldownSeconds, DefaultBackgroundCooldownSeconds)) * time.Second
	}
	return time.Duration(orDefault(c.HeadlessCooldownSeconds, DefaultHeadlessCooldownSeconds)) * time.Second
}

// SweepInterval is how often expired alert history entries are dropped.
func (c MonitorConfig) SweepInterval() time.Duration {
	return time.Duration(orDefault(c.SweepIntervalSeconds, DefaultSweepIntervalSeconds)) * time.Second
}

// StopTimeout bounds how long a stop waits for a loop to exit.
func (c MonitorConfig) StopTimeout() time.Duration {
	return time.Duration(orDefault(c.StopTimeoutSeconds, DefaultStopTimeoutSeconds)) * time.Second
}

// MaxFileSize caps how many bytes of a file are scanned.
func (c MonitorConfig) MaxFileSize() int64 {
	return int64(orDefault(c.MaxFileSizeBytes, DefaultMaxFileSizeBytes))
}
