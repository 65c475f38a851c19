package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, ModeHeadless, cfg.Mode)
	assert.Equal(t, "dlp_log.log", cfg.LogConfig.LogFile)
	assert.Equal(t, []string{"."}, cfg.MonitorConfig.WatchPaths)
	assert.True(t, cfg.MonitorConfig.IncludeUserDirs)
	assert.True(t, cfg.MonitorConfig.ClipboardEnabled)
	assert.False(t, cfg.StorageConfig.JournalEnabled)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeHeadless, cfg.Mode)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mode: Background
log_config:
  log_level: debug
  log_format: json
monitor_config:
  watch_paths: ["/srv/share", "/home/alice/inbox"]
  include_user_dirs: false
  clipboard_enabled: true
  background_cooldown_seconds: 15
  debounce_ms: 250
detector_config:
  enabled_types: [EMAIL, SSN]
storage_config:
  journal_enabled: true
  journal_path: /var/lib/zeroleaks/alerts.db
`
	require.NoError(t, os.WriteFile(configFile, []byte(data), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeBackground, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, []string{"/srv/share", "/home/alice/inbox"}, cfg.MonitorConfig.WatchPaths)
	assert.False(t, cfg.MonitorConfig.IncludeUserDirs)
	assert.Equal(t, 15*time.Second, cfg.MonitorConfig.Cooldown(cfg.Mode))
	assert.Equal(t, 250*time.Millisecond, cfg.MonitorConfig.Debounce())
	assert.Equal(t, []string{"EMAIL", "SSN"}, cfg.DetectorConfig.EnabledTypes)
	assert.True(t, cfg.StorageConfig.JournalEnabled)
	assert.Equal(t, DefaultStorageArchiveFlushSize, cfg.StorageConfig.ArchiveFlushSize)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	data := `{"mode": "headless", "monitor_config": {"headless_cooldown_seconds": 30}}`
	require.NoError(t, os.WriteFile(configFile, []byte(data), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.MonitorConfig.Cooldown(ModeHeadless))
	assert.Equal(t, time.Second, cfg.MonitorConfig.ClipboardInterval())
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: [unclosed"), 0644))

	_, err := LoadGlobalConfig(configFile, zerolog.Nop())

	assert.Error(t, err)
}

func TestGetConfigPath_Env(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: headless"), 0644))
	t.Setenv(ConfigPathEnv, configFile)

	assert.Equal(t, configFile, GetConfigPath(""))
	assert.Equal(t, configFile, GetConfigPath("/missing/flag.yaml"))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(cfg *GlobalConfig) {}},
		{name: "bad mode", mutate: func(cfg *GlobalConfig) { cfg.Mode = "onetime" }, wantErr: "Mode"},
		{name: "empty mode", mutate: func(cfg *GlobalConfig) { cfg.Mode = "" }, wantErr: "required"},
		{name: "bad log level", mutate: func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "loud" }, wantErr: "loglevel"},
		{name: "bad log format", mutate: func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" }, wantErr: "logformat"},
		{name: "clipboard too fast", mutate: func(cfg *GlobalConfig) { cfg.MonitorConfig.ClipboardIntervalMs = 10 }, wantErr: "ClipboardIntervalMs"},
		{
			name: "journal without path",
			mutate: func(cfg *GlobalConfig) {
				cfg.StorageConfig.JournalEnabled = true
				cfg.StorageConfig.JournalPath = ""
			},
			wantErr: "JournalPath",
		},
		{name: "unknown codec", mutate: func(cfg *GlobalConfig) { cfg.StorageConfig.CompressionCodec = "lzma" }, wantErr: "CompressionCodec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfig_ConfigurationErrors(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.Mode = ""
	cfg.MonitorConfig.ClipboardIntervalMs = 10

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
	var cfgErr *common.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Mode", cfgErr.Field)
	assert.Empty(t, cfgErr.Section)
	assert.Contains(t, err.Error(), "section 'MonitorConfig', field 'ClipboardIntervalMs'")

	assert.ErrorIs(t, ValidateConfig(nil), common.ErrInvalidConfiguration)
}

func TestGlobalConfig_Clone(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.DetectorConfig.EnabledTypes = []string{"EMAIL"}

	clone := cfg.Clone()
	clone.MonitorConfig.WatchPaths[0] = "/changed"
	clone.DetectorConfig.EnabledTypes[0] = "SSN"

	assert.Equal(t, ".", cfg.MonitorConfig.WatchPaths[0])
	assert.Equal(t, "EMAIL", cfg.DetectorConfig.EnabledTypes[0])
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := NewDefaultGlobalConfig()
	cfg.Mode = ModeBackground
	cfg.MonitorConfig.WatchPaths = []string{"/data"}

	require.NoError(t, SaveGlobalConfig(cfg, path))
	loaded, err := LoadGlobalConfig(path, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeBackground, loaded.Mode)
	assert.Equal(t, []string{"/data"}, loaded.MonitorConfig.WatchPaths)
}
