package backtest

import (
	"fmt"

	"github.com/yourusername/race-kelly-sim/internal/config"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

// Stake modes
const (
	StakeModeKelly   = "kelly"
	StakeModeFixed   = "fixed"
	StakeModeWinRate = "winrate"
)

// Win-rate filter modes
const (
	WinRateNone    = "none"
	WinRateFixed   = "fixed"
	WinRateDynamic = "dynamic"
)

// SimulationConfig holds the parameters of one simulation run
type SimulationConfig struct {
	InitialBankroll       float64         `json:"initial_bankroll"`
	BankrollFraction      float64         `json:"bankroll_fraction"`
	MinExpectedValue      float64         `json:"min_expected_value"`
	MinKellyFraction      float64         `json:"min_kelly_fraction"`
	MinOdds               float64         `json:"min_odds"`
	MaxOdds               float64         `json:"max_odds"`
	StakeMode             string          `json:"stake_mode"`
	FixedStakeFraction    float64         `json:"fixed_stake_fraction"` // accepted for compatibility; fixed mode splits the pool evenly
	MinStake              float64         `json:"min_stake"`
	PlaceholderStake      float64         `json:"placeholder_stake"`
	WinRateMode           string          `json:"winrate_mode"`
	FixedWinRateThreshold float64         `json:"fixed_winrate_threshold"`
	AllowedRanks          []int           `json:"allowed_ranks"`
	FieldSizeBands        []FieldSizeBand `json:"field_size_bands"`
	VoidMissingResults    bool            `json:"void_missing_results"`
}

// DefaultSimulationConfig returns the parameters the strategy was tuned with
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		InitialBankroll:       10000,
		BankrollFraction:      0.1,
		MinExpectedValue:      0.10,
		MinKellyFraction:      0.01,
		MinOdds:               1.5,
		MaxOdds:               100,
		StakeMode:             StakeModeKelly,
		FixedStakeFraction:    0.01,
		MinStake:              100,
		PlaceholderStake:      100,
		WinRateMode:           WinRateNone,
		FixedWinRateThreshold: 0.03,
		AllowedRanks:          []int{1, 2},
		FieldSizeBands:        []FieldSizeBand{{Min: 4, Max: 6}, {Min: 41}},
	}
}

// FromConfig converts app config to simulation config
func FromConfig(cfg *config.SimulationConfig) (SimulationConfig, error) {
	if cfg == nil {
		return SimulationConfig{}, fmt.Errorf("simulation config is required")
	}

	bands := make([]FieldSizeBand, 0, len(cfg.FieldSizeBands))
	for _, b := range cfg.FieldSizeBands {
		bands = append(bands, FieldSizeBand{Min: b.Min, Max: b.Max})
	}

	sim := SimulationConfig{
		InitialBankroll:       cfg.InitialBankroll,
		BankrollFraction:      cfg.BankrollFraction,
		MinExpectedValue:      cfg.MinExpectedValue,
		MinKellyFraction:      cfg.MinKellyFraction,
		MinOdds:               cfg.MinOdds,
		MaxOdds:               cfg.MaxOdds,
		StakeMode:             cfg.StakeMode,
		FixedStakeFraction:    cfg.FixedStakeFraction,
		MinStake:              cfg.MinStake,
		PlaceholderStake:      cfg.PlaceholderStake,
		WinRateMode:           cfg.WinRateFilter,
		FixedWinRateThreshold: cfg.FixedWinRateThreshold,
		AllowedRanks:          append([]int(nil), cfg.AllowedRanks...),
		FieldSizeBands:        bands,
		VoidMissingResults:    cfg.VoidMissingResults,
	}

	return sim, sim.Validate()
}

// Validate validates simulation parameters
func (c SimulationConfig) Validate() error {
	if c.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if c.BankrollFraction <= 0 || c.BankrollFraction > 1 {
		return fmt.Errorf("bankroll fraction must be in (0, 1]")
	}
	if c.MinOdds < 1 {
		return fmt.Errorf("min odds must be at least 1.0")
	}
	if c.MinOdds > c.MaxOdds {
		return fmt.Errorf("min odds %.2f exceeds max odds %.2f", c.MinOdds, c.MaxOdds)
	}
	if c.MinStake < 0 || c.PlaceholderStake < 0 {
		return fmt.Errorf("stake amounts cannot be negative")
	}
	switch c.StakeMode {
	case StakeModeKelly, StakeModeFixed, StakeModeWinRate:
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownStakeMode, c.StakeMode)
	}
	switch c.WinRateMode {
	case WinRateNone, WinRateDynamic:
	case WinRateFixed:
		if c.FixedWinRateThreshold <= 0 || c.FixedWinRateThreshold >= 1 {
			return fmt.Errorf("fixed win-rate threshold must be in (0, 1)")
		}
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownWinRate, c.WinRateMode)
	}
	if len(c.AllowedRanks) == 0 {
		return fmt.Errorf("at least one allowed predicted rank is required")
	}
	for _, rank := range c.AllowedRanks {
		if rank < 1 {
			return fmt.Errorf("allowed ranks must be positive, got %d", rank)
		}
	}
	if len(c.FieldSizeBands) == 0 {
		return fmt.Errorf("at least one field size band is required")
	}
	for _, band := range c.FieldSizeBands {
		if err := band.Validate(); err != nil {
			return err
		}
	}
	return nil
}
