package logger

import "github.com/rs/zerolog"

// LoggerConfig is the resolved form of FileLogConfig used by the builder.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	Compress      bool
}

// LogFormat represents available log formats
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

var formatNames = map[LogFormat]string{
	FormatJSON:    "json",
	FormatConsole: "console",
	FormatText:    "text",
}

func (lf LogFormat) String() string {
	if name, ok := formatNames[lf]; ok {
		return name
	}
	return formatNames[FormatConsole]
}

// DefaultLoggerConfig resolves NewDefaultFileLogConfig.
func DefaultLoggerConfig() LoggerConfig {
	cfg, _ := NewConfigConverter().ConvertConfig(NewDefaultFileLogConfig())
	return cfg
}
