package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/aleister1102/zeroleaks/internal/logger"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Mode           string               `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
	LogConfig      logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MonitorConfig  MonitorConfig        `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	DetectorConfig DetectorConfig       `json:"detector_config,omitempty" yaml:"detector_config,omitempty"`
	StorageConfig  StorageConfig        `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Mode:           ModeHeadless,
		LogConfig:      logger.NewDefaultFileLogConfig(),
		MonitorConfig:  NewDefaultMonitorConfig(),
		DetectorConfig: NewDefaultDetectorConfig(),
		StorageConfig:  NewDefaultStorageConfig(),
	}
}

// Clone returns a deep copy.
func (c *GlobalConfig) Clone() *GlobalConfig {
	if c == nil {
		return NewDefaultGlobalConfig()
	}
	dst := *c
	dst.MonitorConfig.WatchPaths = cloneStrings(c.MonitorConfig.WatchPaths)
	dst.MonitorConfig.DriveMountRoots = cloneStrings(c.MonitorConfig.DriveMountRoots)
	dst.DetectorConfig.EnabledTypes = cloneStrings(c.DetectorConfig.EnabledTypes)
	return &dst
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append([]string(nil), src...)
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	data, err := loadConfigFileContent(common.NewFileReader(logger), filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

// loadConfigFileContent reads the config file
func loadConfigFileContent(reader *common.FileReader, filePath string) ([]byte, error) {
	opts := common.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024 // 10MB max config file size

	return reader.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// SaveGlobalConfig writes cfg to filePath in YAML or JSON depending on the
// extension.
func SaveGlobalConfig(cfg *GlobalConfig, filePath string) error {
	var (
		data []byte
		err  error
	)
	if isYAMLFile(filepath.Ext(filePath)) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return common.WrapError(err, "failed to marshal config")
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return common.WrapError(err, "failed to write config file: "+filePath)
	}
	return nil
}
