package backtest

import (
	"math"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// NormalizeRace rescales raw probabilities so the race sums to one and derives
// EV and Kelly for every entry. Results are index-aligned with entries.
func NormalizeRace(entries []models.HorseEntry) ([]models.Edge, error) {
	sum := 0.0
	for _, e := range entries {
		sum += e.RawProbability
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, models.ErrDegenerateRace
	}

	edges := make([]models.Edge, len(entries))
	for i, e := range entries {
		p := e.RawProbability / sum
		kelly, defined := KellyFraction(p, e.Odds)
		edges[i] = models.Edge{
			Probability:   p,
			ExpectedValue: ExpectedValue(p, e.Odds),
			KellyFraction: kelly,
			KellyDefined:  defined,
		}
	}
	return edges, nil
}

// ExpectedValue returns the expected profit per unit staked
func ExpectedValue(p, odds float64) float64 {
	return p*(odds-1) - (1 - p)
}

// KellyFraction returns the full-Kelly bankroll fraction. It is undefined
// when odds leave no net payout.
func KellyFraction(p, odds float64) (float64, bool) {
	b := odds - 1
	if b <= 0 {
		return 0, false
	}
	return (b*p - (1 - p)) / b, true
}
