package metrics

import "github.com/yourusername/race-kelly-sim/internal/models"

// SimulationCollector feeds engine events into the global registry.
type SimulationCollector struct{}

// NewSimulationCollector initializes the registry and returns a collector.
func NewSimulationCollector() *SimulationCollector {
	InitRegistry()
	return &SimulationCollector{}
}

// ObserveRaceSkipped implements the engine observer.
func (c *SimulationCollector) ObserveRaceSkipped(reason string) {
	RecordRaceSkipped(reason)
}

// ObserveDecision implements the engine observer.
func (c *SimulationCollector) ObserveDecision(decision models.BetDecision) {
	if decision.Placed {
		RecordBetPlaced()
		return
	}
	for _, reason := range decision.Reasons.Reasons() {
		RecordBetRejected(reason.String())
	}
}

// ObserveRaceSettled implements the engine observer.
func (c *SimulationCollector) ObserveRaceSettled(stakePool, bankroll, maxDrawdown float64) {
	RecordRaceSettled(stakePool)
	UpdateBankroll(bankroll)
	UpdateMaxDrawdown(maxDrawdown)
}
