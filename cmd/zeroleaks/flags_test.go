package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/zeroleaks/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Aliases(t *testing.T) {
	flags, err := ParseFlags([]string{"-c", "cfg.yaml", "-p", "a", "--path", "b", "-e", "-m", " Background ", "--no-clipboard", "--no-user-dirs"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "cfg.yaml", flags.GlobalConfigFile)
	assert.Equal(t, []string{"a", "b"}, flags.Paths)
	assert.True(t, flags.External)
	assert.Equal(t, "background", flags.Mode)
	assert.True(t, flags.NoClipboard)
	assert.True(t, flags.NoUserDirs)
}

func TestParseFlags_LongFormWins(t *testing.T) {
	flags, err := ParseFlags([]string{"--config", "long.yaml", "-c", "short.yaml", "--mode", "headless", "-m", "background"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "long.yaml", flags.GlobalConfigFile)
	assert.Equal(t, "headless", flags.Mode)
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := ParseFlags([]string{"--path", " "}, io.Discard)
	assert.Error(t, err)

	_, err = ParseFlags([]string{"stray"}, io.Discard)
	assert.Error(t, err)

	_, err = ParseFlags([]string{"--unknown"}, io.Discard)
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	cfg.MonitorConfig.WatchPaths = []string{"/from/config"}

	applyFlags(cfg, AppFlags{Mode: config.ModeBackground, Paths: []string{"/from/flag"}, External: true, NoClipboard: true, NoUserDirs: true})

	assert.Equal(t, config.ModeBackground, cfg.Mode)
	assert.Equal(t, []string{"/from/flag"}, cfg.MonitorConfig.WatchPaths)
	assert.True(t, cfg.MonitorConfig.WatchExternalDrives)
	assert.False(t, cfg.MonitorConfig.ClipboardEnabled)
	assert.False(t, cfg.MonitorConfig.IncludeUserDirs)
}

func TestResolveWatchPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	require.NoError(t, os.Mkdir(filepath.Join(home, "Documents"), 0755))

	cfg := config.NewDefaultMonitorConfig()
	cfg.WatchPaths = nil
	cfg.IncludeUserDirs = true

	paths := resolveWatchPaths(cfg, AppFlags{}, zerolog.Nop())
	assert.Equal(t, []string{".", filepath.Join(home, "Documents")}, paths)

	paths = resolveWatchPaths(cfg, AppFlags{NoUserDirs: true}, zerolog.Nop())
	assert.Equal(t, []string{"."}, paths)
}
