// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// AuditLogger records every per-runner decision of a run.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetDecision logs the filter, stake and settlement outcome of one runner.
func (al *AuditLogger) LogBetDecision(row models.LedgerRow) {
	fields := logrus.Fields{
		"race_id":        row.Entry.RaceID,
		"horse":          row.Entry.Horse,
		"predicted_rank": row.Entry.PredictedRank,
		"odds":           row.Entry.Odds,
		"probability":    row.Edge.Probability,
		"expected_value": row.Edge.ExpectedValue,
		"kelly_fraction": row.Edge.KellyFraction,
		"placed":         row.Decision.Placed,
	}

	if !row.Decision.Placed {
		fields["reasons"] = row.Decision.Reasons.String()
		al.WithFields(fields).Trace("Bet rejected")
		return
	}

	fields["stake"] = row.Decision.Stake
	fields["return"] = row.Decision.Return
	fields["won"] = row.Decision.Won
	fields["voided"] = row.Decision.Voided
	al.WithFields(fields).Debug("Bet settled")
}

// LogRejectedRace logs entries of a race that was dropped before staking.
func (al *AuditLogger) LogRejectedRace(group models.RaceGroup, reason string) {
	al.WithFields(logrus.Fields{
		"race_id":    group.ID,
		"track":      group.Track,
		"field_size": group.FieldSize(),
		"reason":     reason,
	}).Trace("Race rejected")
}
