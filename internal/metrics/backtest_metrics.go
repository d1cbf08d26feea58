// Package metrics defines run-level metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Run counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of simulation runs by stake mode and status",
	}, []string{"stake_mode", "status"})
)

// Run gauge vectors
var (
	FinalBankroll = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "final_bankroll",
		Help:      "Final bankroll of the last run per stake mode",
	}, []string{"stake_mode"})
)

// RecordBacktestRun records a run event.
// status should be one of: "success", "empty", "interrupted", "failure"
func RecordBacktestRun(stakeMode, status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(stakeMode, status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// UpdateFinalBankroll sets the final bankroll for a stake mode.
func UpdateFinalBankroll(stakeMode string, amount float64) {
	FinalBankroll.WithLabelValues(stakeMode).Set(amount)
}
