package logger

// ConfigConverter resolves a FileLogConfig into the LoggerConfig the builder
// consumes. Non-positive size and backup limits take the package defaults.
type ConfigConverter struct {
	levelParser  *LogLevelParser
	formatParser *LogFormatParser
}

func NewConfigConverter() *ConfigConverter {
	return &ConfigConverter{
		levelParser:  NewLogLevelParser(),
		formatParser: NewLogFormatParser(),
	}
}

// ConvertConfig reports an unparsable level but still returns an
// info-level config.
func (cc *ConfigConverter) ConvertConfig(cfg FileLogConfig) (LoggerConfig, error) {
	level, err := cc.levelParser.ParseLevel(cfg.LogLevel)

	return LoggerConfig{
		Level:         level,
		Format:        cc.formatParser.ParseFormat(cfg.LogFormat),
		EnableConsole: !cfg.DisableConsole,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     positiveOr(cfg.MaxLogSizeMB, DefaultMaxLogSizeMB),
		MaxBackups:    positiveOr(cfg.MaxLogBackups, DefaultMaxLogBackups),
		MaxAgeDays:    positiveOr(cfg.MaxLogAgeDays, 0),
		Compress:      cfg.CompressBackups,
	}, err
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
