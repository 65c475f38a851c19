package config

// Operating modes
const (
	ModeHeadless   = "headless"
	ModeBackground = "background"
)

const (
	// Monitor Defaults
	DefaultClipboardIntervalMs       = 1000
	DefaultDriveIntervalSeconds      = 5
	DefaultDebounceMs                = 500
	DefaultHeadlessCooldownSeconds   = 60
	DefaultBackgroundCooldownSeconds = 10
	DefaultSweepIntervalSeconds      = 300
	DefaultMaxFileSizeBytes          = 10 * 1024 * 1024
	DefaultStopTimeoutSeconds        = 5

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"
	DefaultStorageJournalPath      = "database/alerts.db"
	DefaultStorageArchiveFlushSize = 100

	// ConfigPathEnv overrides config file discovery.
	ConfigPathEnv = "ZEROLEAKS_CONFIG_PATH"
)
