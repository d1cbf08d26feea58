package backtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

func TestFieldSizeBandContains(t *testing.T) {
	bands := []FieldSizeBand{{Min: 4, Max: 6}, {Min: 41}}

	tests := []struct {
		fieldSize int
		want      bool
	}{
		{3, false}, {4, true}, {6, true}, {7, false}, {40, false}, {41, true}, {120, true},
	}

	for _, tt := range tests {
		got := false
		for _, b := range bands {
			got = got || b.Contains(tt.fieldSize)
		}
		assert.Equal(t, tt.want, got, "field size %d", tt.fieldSize)
	}
}

func TestFieldSizeBandValidate(t *testing.T) {
	assert.NoError(t, FieldSizeBand{Min: 41}.Validate())
	assert.Error(t, FieldSizeBand{Min: 0, Max: 5}.Validate())
	assert.Error(t, FieldSizeBand{Min: 8, Max: 5}.Validate())
	assert.Equal(t, "4-6", FieldSizeBand{Min: 4, Max: 6}.String())
	assert.Equal(t, "41+", FieldSizeBand{Min: 41}.String())
}

func TestRaceAdmission(t *testing.T) {
	admission := NewRaceAdmission([]int{1, 2}, []FieldSizeBand{{Min: 4, Max: 6}, {Min: 41}})

	admitted, _, ok := admission.Admit(fiveRunnerRace(1))
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, admitted)

	seven := makeGroup(2,
		runner{odds: 3, prob: 0.3}, runner{odds: 3, prob: 0.2}, runner{odds: 3, prob: 0.1},
		runner{odds: 3, prob: 0.1}, runner{odds: 3, prob: 0.1}, runner{odds: 3, prob: 0.1},
		runner{odds: 3, prob: 0.1},
	)
	_, reason, ok := admission.Admit(seven)
	assert.False(t, ok)
	assert.Equal(t, SkipFieldSize, reason)
}

func TestRaceAdmissionRankCheckedFirst(t *testing.T) {
	admission := NewRaceAdmission([]int{9}, []FieldSizeBand{{Min: 4, Max: 6}})

	// Field size 2 is also outside the band; the rank filter reports first
	_, reason, ok := admission.Admit(makeGroup(1, runner{odds: 3, prob: 0.5}, runner{odds: 3, prob: 0.5}))
	assert.False(t, ok)
	assert.Equal(t, SkipRankFilter, reason)
}

func TestBetFilterReasons(t *testing.T) {
	cfg := DefaultSimulationConfig()
	filter, err := NewBetFilter(cfg)
	require.NoError(t, err)

	tests := []struct {
		name  string
		odds  float64
		edge  models.Edge
		wants models.RejectReason
	}{
		{
			name:  "passes every threshold",
			odds:  3,
			edge:  models.Edge{Probability: 0.45, ExpectedValue: 0.35, KellyFraction: 0.175, KellyDefined: true},
			wants: 0,
		},
		{
			name:  "negative edge",
			odds:  2,
			edge:  models.Edge{Probability: 0.35, ExpectedValue: -0.3, KellyFraction: -0.3, KellyDefined: true},
			wants: models.RejectKellyLow | models.RejectEVLow,
		},
		{
			name:  "kelly exactly at minimum",
			odds:  3,
			edge:  models.Edge{Probability: 0.4, ExpectedValue: 0.2, KellyFraction: 0.01, KellyDefined: true},
			wants: models.RejectKellyLow,
		},
		{
			name:  "odds too long",
			odds:  150,
			edge:  models.Edge{Probability: 0.1, ExpectedValue: 13.9, KellyFraction: 0.09, KellyDefined: true},
			wants: models.RejectOddsHigh,
		},
		{
			name:  "odds too short",
			odds:  1.2,
			edge:  models.Edge{Probability: 0.95, ExpectedValue: 0.14, KellyFraction: 0.7, KellyDefined: true},
			wants: models.RejectOddsLow,
		},
		{
			name:  "odds of one leave kelly undefined",
			odds:  1,
			edge:  models.Edge{Probability: 0.9, ExpectedValue: -0.1, KellyDefined: false},
			wants: models.RejectKellyLow | models.RejectEVLow | models.RejectOddsLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons, threshold := filter.Evaluate(models.HorseEntry{Odds: tt.odds}, tt.edge, 5)
			assert.Equal(t, tt.wants, reasons, "got %s", reasons)
			assert.Equal(t, 0.0, threshold)
		})
	}
}

func TestWinRateThresholds(t *testing.T) {
	none, err := NewWinRateThreshold(WinRateNone, 0.03)
	require.NoError(t, err)
	assert.Equal(t, 0.0, none.Threshold(5))

	fixed, err := NewWinRateThreshold(WinRateFixed, 0.03)
	require.NoError(t, err)
	assert.Equal(t, 0.03, fixed.Threshold(5))

	dynamic, err := NewWinRateThreshold(WinRateDynamic, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, dynamic.Threshold(5), 1e-12)
	assert.Equal(t, 0.0, dynamic.Threshold(0))

	_, err = NewWinRateThreshold("adaptive", 0)
	assert.True(t, errors.Is(err, models.ErrUnknownWinRate))
}

func TestBetFilterDynamicWinRate(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.WinRateMode = WinRateDynamic
	filter, err := NewBetFilter(cfg)
	require.NoError(t, err)

	edge := models.Edge{Probability: 0.2, ExpectedValue: 0.4, KellyFraction: 0.1, KellyDefined: true}
	reasons, threshold := filter.Evaluate(models.HorseEntry{Odds: 7}, edge, 5)

	// p equal to 1/field size is not strictly above the threshold
	assert.InDelta(t, 0.2, threshold, 1e-12)
	assert.Equal(t, models.RejectWinRateLow, reasons)
}
