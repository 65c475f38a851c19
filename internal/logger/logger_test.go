package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := NewDefaultFileLogConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "dlp_log.log")

	log, err := New(cfg)

	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewDefaultFileLogConfig(t *testing.T) {
	cfg := NewDefaultFileLogConfig()
	assert.Equal(t, "dlp_log.log", cfg.LogFile)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestBuilder_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	var console bytes.Buffer

	l, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogFile: path, LogFormat: "json", LogLevel: "debug"}).
		WithConsoleOutput(&console).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Debug().Str("component", "test").Msg("hello file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello file"`)
	assert.Contains(t, console.String(), "hello file")
	assert.Equal(t, zerolog.DebugLevel, l.Config().Level)
}

func TestBuilder_InvalidLevel(t *testing.T) {
	_, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogLevel: "loud"}).
		Build()

	assert.Error(t, err)
}

func TestBuilder_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	l, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogFormat: "text"}).
		WithConsoleOutput(&console).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("console only")
	assert.Contains(t, console.String(), "console only")
	assert.False(t, l.Config().EnableFile)
}

func TestBuilder_NoWriters(t *testing.T) {
	_, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{DisableConsole: true}).
		Build()

	assert.Error(t, err)
}

func TestLogFormatParser(t *testing.T) {
	p := NewLogFormatParser()
	assert.Equal(t, FormatJSON, p.ParseFormat("JSON"))
	assert.Equal(t, FormatText, p.ParseFormat("text"))
	assert.Equal(t, FormatConsole, p.ParseFormat(""))
	assert.Equal(t, FormatConsole, p.ParseFormat("weird"))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestLogLevelParser(t *testing.T) {
	p := NewLogLevelParser()

	level, err := p.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = p.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	_, err = p.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()

	assert.Equal(t, DefaultLogFile, cfg.FilePath)
	assert.True(t, cfg.EnableFile)
	assert.Equal(t, FormatConsole, cfg.Format)
	assert.Equal(t, DefaultMaxLogSizeMB, cfg.MaxSizeMB)
	assert.Zero(t, cfg.MaxAgeDays)
}

func TestConvertConfig_Rotation(t *testing.T) {
	cfg, err := NewConfigConverter().ConvertConfig(FileLogConfig{
		LogFile:         "alerts.log",
		MaxLogAgeDays:   7,
		CompressBackups: true,
		MaxLogBackups:   -1,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxAgeDays)
	assert.True(t, cfg.Compress)
	assert.Equal(t, DefaultMaxLogBackups, cfg.MaxBackups)
}

func TestLogFileMatcher_RotatedBackups(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "monitor.log")
	rotator := &lumberjack.Logger{Filename: active}
	_, err := rotator.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, rotator.Rotate())
	_, err = rotator.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, rotator.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	match := LogFileMatcher(active)
	for _, e := range entries {
		assert.True(t, match(filepath.Join(dir, e.Name())), e.Name())
	}

	assert.True(t, match(filepath.Join(dir, "monitor-2026-10-19T15-29-12.997.log.gz")))
	assert.False(t, match(filepath.Join(dir, "monitor-notes.log")))
	assert.False(t, match(filepath.Join(dir, "other.log")))
	assert.False(t, match(filepath.Join(dir, "sub", "monitor-2026-10-19T15-29-12.997.log")))
	assert.Nil(t, LogFileMatcher(""))
}
