// Package metrics provides centralized Prometheus metrics registry for the simulator.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "race_kelly_sim"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_processed_total",
		Help:      "Total number of races processed by outcome",
	}, []string{"outcome"})
	RacesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_skipped_total",
		Help:      "Total number of races skipped before staking by reason",
	}, []string{"reason"})
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_placed_total",
		Help:      "Total number of bets placed",
	})
	BetsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_rejected_total",
		Help:      "Total number of runner rejections by reason; one runner may count under several reasons",
	}, []string{"reason"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_bankroll",
		Help:      "Bankroll after the most recently settled race",
	})
	MaxDrawdown = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "max_drawdown",
		Help:      "Largest peak-to-current bankroll drop observed in the run",
	})
)

// Histogram metrics
var (
	RaceStakePool = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "race_stake_pool",
		Help:      "Capital made available for staking per settled race",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of simulation runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RacesProcessedTotal)
		registry.MustRegister(RacesSkippedTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsRejectedTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(MaxDrawdown)

		registry.MustRegister(RaceStakePool)
		registry.MustRegister(BacktestDuration)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(FinalBankroll)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// RecordBetPlaced records a bet placement event.
func RecordBetPlaced() {
	BetsPlacedTotal.Inc()
}

// RecordBetRejected records one rejection reason.
func RecordBetRejected(reason string) {
	BetsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordRaceSkipped records a race dropped before staking.
func RecordRaceSkipped(reason string) {
	RacesProcessedTotal.WithLabelValues("skipped").Inc()
	RacesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRaceSettled records a settled race and its stake pool.
func RecordRaceSettled(stakePool float64) {
	RacesProcessedTotal.WithLabelValues("settled").Inc()
	RaceStakePool.Observe(stakePool)
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdateMaxDrawdown updates the max drawdown gauge.
func UpdateMaxDrawdown(amount float64) {
	MaxDrawdown.Set(amount)
}
