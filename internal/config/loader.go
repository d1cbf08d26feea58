// Package config provides configuration management for the race-kelly-sim application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "KELLY_SIM"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables are used.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	SetDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults registers the strategy defaults the simulation was tuned with
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "race-kelly-sim")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("input.path", "")
	v.SetDefault("input.timeout_seconds", 30)
	v.SetDefault("input.retry_attempts", 3)
	v.SetDefault("input.columns.date", "Date of Race")
	v.SetDefault("input.columns.time", "Time")
	v.SetDefault("input.columns.odds", "Industry SP")
	v.SetDefault("input.columns.probability", "Predicted_Win_Probability")
	v.SetDefault("input.columns.place", "Place")
	v.SetDefault("input.columns.track", "Track")
	v.SetDefault("input.columns.class", "Class")
	v.SetDefault("input.columns.horse", "Horse")

	v.SetDefault("simulation.initial_bankroll", 10000.0)
	v.SetDefault("simulation.bankroll_fraction", 0.1)
	v.SetDefault("simulation.min_expected_value", 0.10)
	v.SetDefault("simulation.min_kelly_fraction", 0.01)
	v.SetDefault("simulation.min_odds", 1.5)
	v.SetDefault("simulation.max_odds", 100.0)
	v.SetDefault("simulation.stake_mode", "kelly")
	v.SetDefault("simulation.fixed_stake_fraction", 0.01)
	v.SetDefault("simulation.min_stake", 100.0)
	v.SetDefault("simulation.placeholder_stake", 100.0)
	v.SetDefault("simulation.winrate_filter", "none")
	v.SetDefault("simulation.fixed_winrate_threshold", 0.03)
	v.SetDefault("simulation.allowed_ranks", []int{1, 2})
	v.SetDefault("simulation.field_size_bands", []map[string]int{
		{"min": 4, "max": 6},
		{"min": 41, "max": 0},
	})

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.write_html", true)
	v.SetDefault("output.write_json", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "data/runs.db")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.ssl_mode", "disable")
	v.SetDefault("store.postgres.max_connections", 4)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
