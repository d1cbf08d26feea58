// Package logger provides simulation-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for the race loop.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogRunStarted logs the start of a simulation run.
func (sl *SimulationLogger) LogRunStarted(stakeMode string, initialBankroll float64, races int) {
	sl.WithFields(logrus.Fields{
		"stake_mode":       stakeMode,
		"initial_bankroll": initialBankroll,
		"races":            races,
	}).Info("Simulation started")
}

// LogRaceSkipped logs a race that never reached staking.
func (sl *SimulationLogger) LogRaceSkipped(raceID string, fieldSize int, reason string) {
	sl.WithFields(logrus.Fields{
		"race_id":    raceID,
		"field_size": fieldSize,
		"reason":     reason,
	}).Info("Race skipped")
}

// LogRaceSettled logs the bankroll movement of one settled race.
func (sl *SimulationLogger) LogRaceSettled(raceID string, betsPlaced int, stakePool, raceProfit, bankroll float64) {
	sl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"bets_placed": betsPlaced,
		"stake_pool":  stakePool,
		"race_profit": raceProfit,
		"bankroll":    bankroll,
	}).Debug("Race settled")
}

// LogDrawdown logs a new maximum drawdown.
func (sl *SimulationLogger) LogDrawdown(raceID string, drawdown, maxBankroll, currentBankroll float64) {
	sl.WithFields(logrus.Fields{
		"race_id":          raceID,
		"drawdown":         drawdown,
		"max_bankroll":     maxBankroll,
		"current_bankroll": currentBankroll,
	}).Debug("New maximum drawdown")
}

// LogRunInterrupted logs a run stopped by context cancellation.
func (sl *SimulationLogger) LogRunInterrupted(racesSettled int, err error) {
	sl.WithError(err).WithField("races_settled", racesSettled).Warn("Simulation interrupted, returning partial results")
}

// LogRunCompleted logs the end of a simulation run.
func (sl *SimulationLogger) LogRunCompleted(racesSettled, racesSkipped, betsPlaced int, finalBankroll float64, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"races_settled":  racesSettled,
		"races_skipped":  racesSkipped,
		"bets_placed":    betsPlaced,
		"final_bankroll": finalBankroll,
		"duration_ms":    duration.Milliseconds(),
	}).Info("Simulation completed")
}
