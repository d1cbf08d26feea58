package backtest

import (
	"fmt"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// SkipReason explains why a race never reached staking
type SkipReason string

// Skip reasons
const (
	SkipRankFilter SkipReason = "rank_filter"
	SkipFieldSize  SkipReason = "field_size"
	SkipDegenerate SkipReason = "degenerate"
)

// FieldSizeBand is a closed runner-count range; Max of 0 means unbounded
type FieldSizeBand struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether n runners fall inside the band
func (b FieldSizeBand) Contains(n int) bool {
	if n < b.Min {
		return false
	}
	return b.Max == 0 || n <= b.Max
}

// Validate checks band bounds
func (b FieldSizeBand) Validate() error {
	if b.Min < 1 {
		return fmt.Errorf("field size band min must be at least 1, got %d", b.Min)
	}
	if b.Max != 0 && b.Max < b.Min {
		return fmt.Errorf("field size band max %d is below min %d", b.Max, b.Min)
	}
	return nil
}

func (b FieldSizeBand) String() string {
	if b.Max == 0 {
		return fmt.Sprintf("%d+", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// RaceAdmission decides once per race whether it is considered at all
type RaceAdmission struct {
	allowedRanks map[int]bool
	bands        []FieldSizeBand
}

// NewRaceAdmission builds the race-level filter
func NewRaceAdmission(ranks []int, bands []FieldSizeBand) RaceAdmission {
	allowed := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		allowed[r] = true
	}
	return RaceAdmission{allowedRanks: allowed, bands: bands}
}

// Admit returns the indexes of entries with an allowed predicted rank. The
// race is rejected when none remain or when the full field size is outside
// every band, checked in that order.
func (a RaceAdmission) Admit(group models.RaceGroup) ([]int, SkipReason, bool) {
	var admitted []int
	for i, e := range group.Entries {
		if a.allowedRanks[e.PredictedRank] {
			admitted = append(admitted, i)
		}
	}
	if len(admitted) == 0 {
		return nil, SkipRankFilter, false
	}

	fieldSize := group.FieldSize()
	for _, band := range a.bands {
		if band.Contains(fieldSize) {
			return admitted, "", true
		}
	}
	return nil, SkipFieldSize, false
}

// WinRateThreshold yields the minimum normalized probability for a race
type WinRateThreshold interface {
	Threshold(fieldSize int) float64
}

type noWinRateThreshold struct{}

func (noWinRateThreshold) Threshold(int) float64 { return 0 }

type fixedWinRateThreshold struct{ value float64 }

func (f fixedWinRateThreshold) Threshold(int) float64 { return f.value }

type dynamicWinRateThreshold struct{}

func (dynamicWinRateThreshold) Threshold(fieldSize int) float64 {
	if fieldSize <= 0 {
		return 0
	}
	return 1 / float64(fieldSize)
}

// NewWinRateThreshold selects the threshold policy for a mode
func NewWinRateThreshold(mode string, fixed float64) (WinRateThreshold, error) {
	switch mode {
	case WinRateNone, "":
		return noWinRateThreshold{}, nil
	case WinRateFixed:
		return fixedWinRateThreshold{value: fixed}, nil
	case WinRateDynamic:
		return dynamicWinRateThreshold{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownWinRate, mode)
	}
}

// BetFilter applies the per-runner numeric thresholds
type BetFilter struct {
	minKelly float64
	minEV    float64
	minOdds  float64
	maxOdds  float64
	winRate  WinRateThreshold
}

// NewBetFilter creates the per-runner filter from the simulation config
func NewBetFilter(cfg SimulationConfig) (BetFilter, error) {
	wr, err := NewWinRateThreshold(cfg.WinRateMode, cfg.FixedWinRateThreshold)
	if err != nil {
		return BetFilter{}, err
	}
	return BetFilter{
		minKelly: cfg.MinKellyFraction,
		minEV:    cfg.MinExpectedValue,
		minOdds:  cfg.MinOdds,
		maxOdds:  cfg.MaxOdds,
		winRate:  wr,
	}, nil
}

// Evaluate returns every reason the runner fails and the win-rate threshold
// applied. An empty reason set means the bet is placed.
func (f BetFilter) Evaluate(entry models.HorseEntry, edge models.Edge, fieldSize int) (models.RejectReason, float64) {
	var reasons models.RejectReason

	if !edge.KellyDefined || edge.KellyFraction <= f.minKelly {
		reasons |= models.RejectKellyLow
	}
	if edge.ExpectedValue <= f.minEV {
		reasons |= models.RejectEVLow
	}
	if entry.Odds > f.maxOdds {
		reasons |= models.RejectOddsHigh
	}
	if entry.Odds < f.minOdds {
		reasons |= models.RejectOddsLow
	}

	threshold := f.winRate.Threshold(fieldSize)
	if edge.Probability <= threshold {
		reasons |= models.RejectWinRateLow
	}

	return reasons, threshold
}
