// Config loading for the dirstore CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"

	defaultLogLevel = "info"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// directory or file is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendFS)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml in configDir unless it exists.
// Reports whether the file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Backend: types.BackendFS,
		DataDir: dataDir,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
