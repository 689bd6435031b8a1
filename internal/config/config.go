// Package config loads application settings from viper.
package config

import (
	"fmt"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/spf13/viper"
)

// Defaults for settings not present in the config file or environment.
const (
	DefaultDatabasePath      = "$HOME/.local/share/paperwork/paperwork.db"
	DefaultVarianceThreshold = 0.2
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "console"
)

// Config holds the resolved application settings.
type Config struct {
	DatabasePath      string
	RulesFile         string
	LogLevel          string
	LogFormat         string
	VarianceThreshold float64
	Workers           int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("report.variance_threshold", DefaultVarianceThreshold)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("import.workers", 0)
}

// Load reads settings from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads settings from v, applying defaults and expanding paths.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:      ExpandPath(v.GetString("database.path")),
		RulesFile:         ExpandPath(v.GetString("rules.file")),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
		VarianceThreshold: v.GetFloat64("report.variance_threshold"),
		Workers:           v.GetInt("import.workers"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.VarianceThreshold < 0 {
		return fmt.Errorf("%w: report.variance_threshold must not be negative, got %v", common.ErrInvalidConfig, c.VarianceThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: import.workers must not be negative, got %d", common.ErrInvalidConfig, c.Workers)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
