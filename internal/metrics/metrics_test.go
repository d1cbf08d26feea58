package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordBetPlaced(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(BetsPlacedTotal)

	RecordBetPlaced()

	assert.Equal(t, before+1, testutil.ToFloat64(BetsPlacedTotal))
}

func TestUpdateBankroll(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		bankroll float64
	}{
		{name: "positive bankroll", bankroll: 10000},
		{name: "zero bankroll", bankroll: 0},
		{name: "negative bankroll", bankroll: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateBankroll(tt.bankroll)
			assert.Equal(t, tt.bankroll, testutil.ToFloat64(CurrentBankroll))
		})
	}
}

func TestSimulationCollector(t *testing.T) {
	collector := NewSimulationCollector()

	skipped := testutil.ToFloat64(RacesSkippedTotal.WithLabelValues("field_size"))
	kellyLow := testutil.ToFloat64(BetsRejectedTotal.WithLabelValues("kelly_low"))
	evLow := testutil.ToFloat64(BetsRejectedTotal.WithLabelValues("ev_low"))
	settled := testutil.ToFloat64(RacesProcessedTotal.WithLabelValues("settled"))

	collector.ObserveRaceSkipped("field_size")
	collector.ObserveDecision(models.BetDecision{Reasons: models.RejectKellyLow | models.RejectEVLow})
	collector.ObserveRaceSettled(1000, 10500, 250)

	assert.Equal(t, skipped+1, testutil.ToFloat64(RacesSkippedTotal.WithLabelValues("field_size")))
	assert.Equal(t, kellyLow+1, testutil.ToFloat64(BetsRejectedTotal.WithLabelValues("kelly_low")))
	assert.Equal(t, evLow+1, testutil.ToFloat64(BetsRejectedTotal.WithLabelValues("ev_low")))
	assert.Equal(t, settled+1, testutil.ToFloat64(RacesProcessedTotal.WithLabelValues("settled")))
	assert.Equal(t, 10500.0, testutil.ToFloat64(CurrentBankroll))
	assert.Equal(t, 250.0, testutil.ToFloat64(MaxDrawdown))
}

func TestBacktestMetrics(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(BacktestRunsTotal.WithLabelValues("kelly", "success"))
	RecordBacktestRun("kelly", "success", 0.25)
	UpdateFinalBankroll("kelly", 12000)

	assert.Equal(t, before+1, testutil.ToFloat64(BacktestRunsTotal.WithLabelValues("kelly", "success")))
	assert.Equal(t, 12000.0, testutil.ToFloat64(FinalBankroll.WithLabelValues("kelly")))
}

func TestWriteTextfile(t *testing.T) {
	InitRegistry()
	RecordBetPlaced()

	path := filepath.Join(t.TempDir(), "textfile", "race_kelly_sim.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "race_kelly_sim_bets_placed_total")
}

func BenchmarkRecordBetPlaced(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordBetPlaced()
	}
}

func BenchmarkUpdateBankroll(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		UpdateBankroll(10000.0)
	}
}
