// Package config provides configuration management for Value Hunter.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/value-hunter/internal/scoring"
)

const (
	// DefaultConfigPath is used when no --config flag is given
	DefaultConfigPath = "config/config.yaml"
	// DefaultInputPath is the scraper's output file
	DefaultInputPath = "output/result.json"
	// DefaultOutputPath is where the evaluation result is written
	DefaultOutputPath = "output/value_hunter_result.json"

	envPrefix = "VALUE_HUNTER"
)

// Load reads and parses the configuration from file and environment variables.
// The file must exist; keys it omits take their default values.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := scoring.DefaultConfig()

	v.SetDefault("app.name", "value-hunter")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("io.input_path", DefaultInputPath)
	v.SetDefault("io.output_path", DefaultOutputPath)
	v.SetDefault("io.csv_path", "")
	v.SetDefault("io.json_only", false)

	v.SetDefault("scoring.weights.form", d.Weights.Form)
	v.SetDefault("scoring.weights.last3f", d.Weights.Last3F)
	v.SetDefault("scoring.weights.upset", d.Weights.Upset)
	v.SetDefault("scoring.weights.venue", d.Weights.Venue)
	v.SetDefault("scoring.thresholds.s_gap", d.Thresholds.SGap)
	v.SetDefault("scoring.thresholds.s_score_ratio", d.Thresholds.SScoreRatio)
	v.SetDefault("scoring.thresholds.a_gap", d.Thresholds.AGap)
	v.SetDefault("scoring.thresholds.a_score_ratio", d.Thresholds.AScoreRatio)
	v.SetDefault("scoring.thresholds.b_gap", d.Thresholds.BGap)
	v.SetDefault("scoring.last3f_fast", d.Last3FFast)
	v.SetDefault("scoring.last3f_slow", d.Last3FSlow)
	v.SetDefault("scoring.upset_full_margin", d.UpsetFullMargin)
	v.SetDefault("scoring.venue_home_bonus", d.VenueHomeBonus)
	v.SetDefault("scoring.venue_experience_points", d.VenueExperiencePoints)

	v.SetDefault("watch.schedule", "@every 1m")
	v.SetDefault("watch.cache_ttl_seconds", 3600)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_path", "")
}
