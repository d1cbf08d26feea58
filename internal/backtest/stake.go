package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// StakeSizer turns a race's stake pool into stakes for the placed runners.
// The returned slice is index-aligned with placed.
type StakeSizer interface {
	Mode() string
	Size(pool float64, placed []models.Edge) []float64
}

// NewStakeSizer selects the sizing policy for a stake mode
func NewStakeSizer(cfg SimulationConfig) (StakeSizer, error) {
	switch cfg.StakeMode {
	case StakeModeKelly:
		return KellySizer{MinStake: cfg.MinStake}, nil
	case StakeModeFixed:
		return FixedSizer{}, nil
	case StakeModeWinRate:
		return WinRateSizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStakeMode, cfg.StakeMode)
	}
}

// KellySizer stakes the Kelly fraction of the pool, floored at MinStake
type KellySizer struct {
	MinStake float64
}

// Mode returns the stake mode name
func (KellySizer) Mode() string { return StakeModeKelly }

// Size implements StakeSizer
func (k KellySizer) Size(pool float64, placed []models.Edge) []float64 {
	stakes := make([]float64, len(placed))
	for i, edge := range placed {
		stakes[i] = math.Max(edge.KellyFraction*pool, k.MinStake)
	}
	return stakes
}

// FixedSizer splits the pool evenly across placed runners
type FixedSizer struct{}

// Mode returns the stake mode name
func (FixedSizer) Mode() string { return StakeModeFixed }

// Size implements StakeSizer
func (FixedSizer) Size(pool float64, placed []models.Edge) []float64 {
	stakes := make([]float64, len(placed))
	if len(placed) == 0 {
		return stakes
	}
	each := pool / float64(len(placed))
	for i := range stakes {
		stakes[i] = each
	}
	return stakes
}

// WinRateSizer splits the pool in proportion to normalized probability
type WinRateSizer struct{}

// Mode returns the stake mode name
func (WinRateSizer) Mode() string { return StakeModeWinRate }

// Size implements StakeSizer
func (WinRateSizer) Size(pool float64, placed []models.Edge) []float64 {
	stakes := make([]float64, len(placed))
	total := 0.0
	for _, edge := range placed {
		total += edge.Probability
	}
	if total <= 0 {
		return stakes
	}
	for i, edge := range placed {
		stakes[i] = pool * edge.Probability / total
	}
	return stakes
}

// ApplyCapitalCap scales stakes down proportionally when they exceed the pool.
// It returns the scale factor applied (1 when no scaling was needed).
func ApplyCapitalCap(stakes []float64, pool float64) float64 {
	total := 0.0
	for _, s := range stakes {
		total += s
	}
	if total <= pool || total <= 0 {
		return 1
	}
	scale := pool / total
	for i := range stakes {
		stakes[i] *= scale
	}
	return scale
}
