// Package config provides configuration management for the race-kelly-sim application.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Recognised simulation modes
var (
	StakeModes   = []string{"kelly", "fixed", "winrate"}
	WinRateModes = []string{"none", "fixed", "dynamic"}
	Environments = []string{"development", "staging", "production"}
	LogLevels    = []string{"debug", "info", "warn", "error"}
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	mustRegister(v, "environment", oneOfFunc(Environments))
	mustRegister(v, "loglevel", oneOfFunc(LogLevels))
	mustRegister(v, "stakemode", oneOfFunc(StakeModes))
	mustRegister(v, "winratemode", oneOfFunc(WinRateModes))

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is required")
	}
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func oneOfFunc(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, candidate := range allowed {
			if value == candidate {
				return true
			}
		}
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	sim := cfg.Simulation

	if sim.MinOdds > sim.MaxOdds {
		return fmt.Errorf("simulation min_odds (%.2f) cannot exceed max_odds (%.2f)", sim.MinOdds, sim.MaxOdds)
	}

	for i, band := range sim.FieldSizeBands {
		if band.Max != 0 && band.Max < band.Min {
			return fmt.Errorf("simulation field_size_bands[%d]: max %d is below min %d", i, band.Max, band.Min)
		}
	}

	seen := make(map[int]bool, len(sim.AllowedRanks))
	for _, rank := range sim.AllowedRanks {
		if seen[rank] {
			return fmt.Errorf("simulation allowed_ranks contains %d more than once", rank)
		}
		seen[rank] = true
	}

	if sim.WinRateFilter == "fixed" && sim.FixedWinRateThreshold <= 0 {
		return fmt.Errorf("fixed winrate filter requires fixed_winrate_threshold > 0")
	}

	if cfg.Store.Enabled {
		switch cfg.Store.Driver {
		case "sqlite":
			if cfg.Store.SQLitePath == "" {
				return fmt.Errorf("sqlite store requires sqlite_path")
			}
		case "postgres":
			if cfg.Store.Postgres.Host == "" || cfg.Store.Postgres.Name == "" || cfg.Store.Postgres.User == "" {
				return fmt.Errorf("postgres store requires host, name and user")
			}
			if cfg.IsProduction() && cfg.Store.Postgres.SSLMode == "disable" {
				return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
			}
		default:
			return fmt.Errorf("store driver must be one of: sqlite, postgres")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		return fmt.Errorf("metrics textfile_path is required when metrics are enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s=%s violated, got '%v'\n", field, tag, fieldError.Param(), value)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s\n", field, strings.Join(Environments, ", "))
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s\n", field, strings.Join(LogLevels, ", "))
		case "stakemode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s, got '%v'\n", field, strings.Join(StakeModes, ", "), value)
		case "winratemode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s, got '%v'\n", field, strings.Join(WinRateModes, ", "), value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
