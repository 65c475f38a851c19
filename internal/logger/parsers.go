package logger

import (
	"strings"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/rs/zerolog"
)

// LogLevelParser handles parsing of log levels
type LogLevelParser struct{}

// NewLogLevelParser creates a new log level parser
func NewLogLevelParser() *LogLevelParser {
	return &LogLevelParser{}
}

// ParseLevel parses string log level to zerolog.Level. Empty means info.
func (llp *LogLevelParser) ParseLevel(levelStr string) (zerolog.Level, error) {
	levelStr = strings.ToLower(strings.TrimSpace(levelStr))
	if levelStr == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// LogFormatParser maps format names onto LogFormat. Unknown names fall back
// to the console format; config validation rejects them earlier.
type LogFormatParser struct {
	byName map[string]LogFormat
}

func NewLogFormatParser() *LogFormatParser {
	byName := make(map[string]LogFormat, len(formatNames))
	for format, name := range formatNames {
		byName[name] = format
	}
	return &LogFormatParser{byName: byName}
}

func (lfp *LogFormatParser) ParseFormat(formatStr string) LogFormat {
	if format, ok := lfp.byName[strings.ToLower(strings.TrimSpace(formatStr))]; ok {
		return format
	}
	return FormatConsole
}
