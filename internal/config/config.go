// Package config provides configuration management for Value Hunter.
package config

import (
	"time"

	"github.com/yourusername/value-hunter/internal/scoring"
)

// Config represents the complete application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app" validate:"required"`
	IO      IOConfig      `mapstructure:"io" validate:"required"`
	Scoring ScoringConfig `mapstructure:"scoring" validate:"required"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
}

// IOConfig represents input and output file locations
type IOConfig struct {
	InputPath  string `mapstructure:"input_path" validate:"required"`
	OutputPath string `mapstructure:"output_path" validate:"required"`
	CSVPath    string `mapstructure:"csv_path"`
	JSONOnly   bool   `mapstructure:"json_only"`
}

// ScoringConfig represents the tunable scoring constants
type ScoringConfig struct {
	Weights               WeightsConfig    `mapstructure:"weights" validate:"required"`
	Thresholds            ThresholdsConfig `mapstructure:"thresholds" validate:"required"`
	Last3FFast            float64          `mapstructure:"last3f_fast" validate:"gt=0"`
	Last3FSlow            float64          `mapstructure:"last3f_slow" validate:"gt=0"`
	UpsetFullMargin       float64          `mapstructure:"upset_full_margin" validate:"gt=0"`
	VenueHomeBonus        float64          `mapstructure:"venue_home_bonus" validate:"gte=0"`
	VenueExperiencePoints float64          `mapstructure:"venue_experience_points" validate:"gte=0"`
}

// WeightsConfig represents factor weights; they must sum to 1
type WeightsConfig struct {
	Form   float64 `mapstructure:"form" validate:"gte=0,lte=1"`
	Last3F float64 `mapstructure:"last3f" validate:"gte=0,lte=1"`
	Upset  float64 `mapstructure:"upset" validate:"gte=0,lte=1"`
	Venue  float64 `mapstructure:"venue" validate:"gte=0,lte=1"`
}

// ThresholdsConfig represents grade cascade thresholds
type ThresholdsConfig struct {
	SGap        int     `mapstructure:"s_gap"`
	SScoreRatio float64 `mapstructure:"s_score_ratio" validate:"gte=0"`
	AGap        int     `mapstructure:"a_gap"`
	AScoreRatio float64 `mapstructure:"a_score_ratio" validate:"gte=0"`
	BGap        int     `mapstructure:"b_gap"`
}

// WatchConfig represents the re-evaluation schedule used by the watch command
type WatchConfig struct {
	Schedule        string `mapstructure:"schedule" validate:"omitempty,schedule"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics export configuration
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// EngineConfig converts the scoring section into engine constants. Tables
// that are not exposed in the file keep their defaults.
func (s ScoringConfig) EngineConfig() scoring.Config {
	cfg := scoring.DefaultConfig()
	cfg.Weights = scoring.Weights{
		Form:   s.Weights.Form,
		Last3F: s.Weights.Last3F,
		Upset:  s.Weights.Upset,
		Venue:  s.Weights.Venue,
	}
	cfg.Thresholds = scoring.GradeThresholds{
		SGap:        s.Thresholds.SGap,
		SScoreRatio: s.Thresholds.SScoreRatio,
		AGap:        s.Thresholds.AGap,
		AScoreRatio: s.Thresholds.AScoreRatio,
		BGap:        s.Thresholds.BGap,
	}
	cfg.Last3FFast = s.Last3FFast
	cfg.Last3FSlow = s.Last3FSlow
	cfg.UpsetFullMargin = s.UpsetFullMargin
	cfg.VenueHomeBonus = s.VenueHomeBonus
	cfg.VenueExperiencePoints = s.VenueExperiencePoints
	return cfg
}

// CacheTTL returns the watch digest cache lifetime
func (w WatchConfig) CacheTTL() time.Duration {
	return time.Duration(w.CacheTTLSeconds) * time.Second
}
