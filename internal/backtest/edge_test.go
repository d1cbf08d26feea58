package backtest

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

func TestNormalizeRaceSumsToOne(t *testing.T) {
	group := makeGroup(1,
		runner{odds: 3, prob: 0.2},
		runner{odds: 4, prob: 0.3},
		runner{odds: 5, prob: 0.1},
		runner{odds: 8, prob: 0.05},
	)

	edges, err := NormalizeRace(group.Entries)
	require.NoError(t, err)

	sum := 0.0
	for _, e := range edges {
		sum += e.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.2/0.65, edges[0].Probability, 1e-12)
}

func TestNormalizeRaceUsesNormalizedProbability(t *testing.T) {
	group := makeGroup(1, runner{odds: 3, prob: 0.3}, runner{odds: 3, prob: 0.3})

	edges, err := NormalizeRace(group.Entries)
	require.NoError(t, err)

	// p = 0.5 after normalization: EV = 0.5*2 - 0.5
	assert.InDelta(t, 0.5, edges[0].ExpectedValue, 1e-12)
	assert.InDelta(t, 0.25, edges[0].KellyFraction, 1e-12)
	assert.True(t, edges[0].KellyDefined)
}

func TestNormalizeRaceDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
	}{
		{name: "zero sum", probs: []float64{0, 0, 0}},
		{name: "nan", probs: []float64{0.2, math.NaN()}},
		{name: "inf", probs: []float64{0.2, math.Inf(1)}},
		{name: "empty", probs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]models.HorseEntry, len(tt.probs))
			for i, p := range tt.probs {
				entries[i] = models.HorseEntry{Odds: 3, RawProbability: p}
			}
			_, err := NormalizeRace(entries)
			assert.True(t, errors.Is(err, models.ErrDegenerateRace))
		})
	}
}

func TestKellyFraction(t *testing.T) {
	tests := []struct {
		name        string
		p, odds     float64
		want        float64
		wantDefined bool
	}{
		{name: "positive edge", p: 0.45, odds: 3, want: 0.175, wantDefined: true},
		{name: "negative edge", p: 0.35, odds: 2, want: -0.3, wantDefined: true},
		{name: "odds of one", p: 0.9, odds: 1, want: 0, wantDefined: false},
		{name: "odds below one", p: 0.9, odds: 0.5, want: 0, wantDefined: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defined := KellyFraction(tt.p, tt.odds)
			assert.Equal(t, tt.wantDefined, defined)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestExpectedValue(t *testing.T) {
	assert.InDelta(t, 0.35, ExpectedValue(0.45, 3), 1e-12)
	assert.InDelta(t, -0.3, ExpectedValue(0.35, 2), 1e-12)
}
