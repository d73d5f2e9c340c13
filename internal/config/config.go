// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service settings, populated from CLIMDIAG_* environment
// variables with defaults.
type Config struct {
	Port         string
	OutputDir    string
	RegionDir    string
	LandMaskPath string
	LandMaskVar  string
	LogLevel     string
}

// Load reads configuration from the environment, applying defaults where
// unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("climdiag")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("output_dir", "./data/diagnostics")
	v.SetDefault("region_dir", "./data/regions")
	v.SetDefault("land_mask_path", "./data/regions/land_sea_mask_regionsmask.nc")
	v.SetDefault("land_mask_var", "mask")
	v.SetDefault("log_level", "info")

	cfg := &Config{
		Port:         v.GetString("port"),
		OutputDir:    v.GetString("output_dir"),
		RegionDir:    v.GetString("region_dir"),
		LandMaskPath: v.GetString("land_mask_path"),
		LandMaskVar:  v.GetString("land_mask_var"),
		LogLevel:     v.GetString("log_level"),
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
}
