// Package config provides configuration management for the race-kelly-sim application.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" yaml:"app" validate:"required"`
	Input      InputConfig      `mapstructure:"input" yaml:"input" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation" validate:"required"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string        `mapstructure:"name" yaml:"name" validate:"required"`
	Environment string        `mapstructure:"environment" yaml:"environment" validate:"required,environment"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level" validate:"required,loglevel"`
	LogFormat   string        `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=text json"`
	LogFile     LogFileConfig `mapstructure:"log_file" yaml:"log_file"`
}

// LogFileConfig configures optional rotated file logging
type LogFileConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// InputConfig describes where predictions are read from and how columns are named
type InputConfig struct {
	Path           string        `mapstructure:"path" yaml:"path" validate:"required"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	RetryAttempts  int           `mapstructure:"retry_attempts" yaml:"retry_attempts" validate:"gte=0"`
	Columns        ColumnsConfig `mapstructure:"columns" yaml:"columns" validate:"required"`
	DateLayouts    []string      `mapstructure:"date_layouts" yaml:"date_layouts"`
}

// ColumnsConfig maps semantic fields onto input header names
type ColumnsConfig struct {
	Date        string `mapstructure:"date" yaml:"date" validate:"required"`
	Time        string `mapstructure:"time" yaml:"time" validate:"required"`
	Odds        string `mapstructure:"odds" yaml:"odds" validate:"required"`
	Probability string `mapstructure:"probability" yaml:"probability" validate:"required"`
	Place       string `mapstructure:"place" yaml:"place" validate:"required"`
	Track       string `mapstructure:"track" yaml:"track"`
	Class       string `mapstructure:"class" yaml:"class"`
	Horse       string `mapstructure:"horse" yaml:"horse"`
}

// SimulationConfig represents the betting simulation parameters
type SimulationConfig struct {
	InitialBankroll       float64               `mapstructure:"initial_bankroll" yaml:"initial_bankroll" validate:"required,gt=0"`
	BankrollFraction      float64               `mapstructure:"bankroll_fraction" yaml:"bankroll_fraction" validate:"required,gt=0,lte=1"`
	MinExpectedValue      float64               `mapstructure:"min_expected_value" yaml:"min_expected_value"`
	MinKellyFraction      float64               `mapstructure:"min_kelly_fraction" yaml:"min_kelly_fraction"`
	MinOdds               float64               `mapstructure:"min_odds" yaml:"min_odds" validate:"gte=1"`
	MaxOdds               float64               `mapstructure:"max_odds" yaml:"max_odds" validate:"required,gt=1"`
	StakeMode             string                `mapstructure:"stake_mode" yaml:"stake_mode" validate:"required,stakemode"`
	FixedStakeFraction    float64               `mapstructure:"fixed_stake_fraction" yaml:"fixed_stake_fraction" validate:"gte=0,lte=1"`
	MinStake              float64               `mapstructure:"min_stake" yaml:"min_stake" validate:"gte=0"`
	PlaceholderStake      float64               `mapstructure:"placeholder_stake" yaml:"placeholder_stake" validate:"gte=0"`
	WinRateFilter         string                `mapstructure:"winrate_filter" yaml:"winrate_filter" validate:"required,winratemode"`
	FixedWinRateThreshold float64               `mapstructure:"fixed_winrate_threshold" yaml:"fixed_winrate_threshold" validate:"gte=0,lt=1"`
	AllowedRanks          []int                 `mapstructure:"allowed_ranks" yaml:"allowed_ranks" validate:"required,min=1,dive,gt=0"`
	FieldSizeBands        []FieldSizeBandConfig `mapstructure:"field_size_bands" yaml:"field_size_bands" validate:"required,min=1,dive"`
	TrackFilter           []string              `mapstructure:"track_filter" yaml:"track_filter"`
	VoidMissingResults    bool                  `mapstructure:"void_missing_results" yaml:"void_missing_results"`
}

// FieldSizeBandConfig is a closed runner-count band; Max of 0 means unbounded
type FieldSizeBandConfig struct {
	Min int `mapstructure:"min" yaml:"min" validate:"gte=1"`
	Max int `mapstructure:"max" yaml:"max" validate:"gte=0"`
}

// OutputConfig represents where and what results are written
type OutputConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir" validate:"required"`
	WriteHTML bool   `mapstructure:"write_html" yaml:"write_html"`
	WriteJSON bool   `mapstructure:"write_json" yaml:"write_json"`
}

// StoreConfig represents optional persistence of finished runs
type StoreConfig struct {
	Enabled    bool           `mapstructure:"enabled" yaml:"enabled"`
	Driver     string         `mapstructure:"driver" yaml:"driver" validate:"omitempty,oneof=sqlite postgres"`
	SQLitePath string         `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Postgres   DatabaseConfig `mapstructure:"postgres" yaml:"postgres"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" yaml:"name"`
	User           string `mapstructure:"user" yaml:"user"`
	Password       string `mapstructure:"password" yaml:"-"`
	SSLMode        string `mapstructure:"ssl_mode" yaml:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics configuration. The simulation is a batch
// job, so metrics are written to a Prometheus textfile rather than served.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsRemoteInput reports whether the input path is an HTTP(S) URL
func (c *Config) IsRemoteInput() bool {
	path := strings.ToLower(c.Input.Path)
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	pg := c.Store.Postgres
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.User,
		pg.Password,
		pg.Host,
		pg.Port,
		pg.Name,
		pg.SSLMode,
	)
}
