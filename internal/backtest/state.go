package backtest

import (
	"time"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// RaceSnapshot is the bankroll ledger entry of one settled race
type RaceSnapshot struct {
	RaceID         string    `json:"race_id"`
	Time           time.Time `json:"time"`
	StakePool      float64   `json:"stake_pool"`
	BetsPlaced     int       `json:"bets_placed"`
	Staked         float64   `json:"staked"`
	Profit         float64   `json:"profit"`
	BankrollBefore float64   `json:"bankroll_before"`
	BankrollAfter  float64   `json:"bankroll_after"`
	MaxBankroll    float64   `json:"max_bankroll"`
	Drawdown       float64   `json:"drawdown"`
}

// SimulationState tracks the bankroll across the chronological race loop.
// It is mutated only by SettleRace.
type SimulationState struct {
	InitialBankroll float64
	CurrentBankroll float64
	MaxBankroll     float64
	MaxDrawdown     float64
	Snapshots       []RaceSnapshot
	EquityCurve     EquityCurve
}

// NewSimulationState initializes simulation state
func NewSimulationState(initialBankroll float64) *SimulationState {
	return &SimulationState{
		InitialBankroll: initialBankroll,
		CurrentBankroll: initialBankroll,
		MaxBankroll:     initialBankroll,
		Snapshots:       []RaceSnapshot{},
		EquityCurve:     EquityCurve{},
	}
}

// StakePool returns the capital available to the next race
func (s *SimulationState) StakePool(fraction float64) float64 {
	return s.CurrentBankroll * fraction
}

// SettleRace applies the summed returns of a race in one update, appends the
// snapshot and stamps bankroll fields onto rows.
func (s *SimulationState) SettleRace(group models.RaceGroup, stakePool float64, rows []models.LedgerRow) RaceSnapshot {
	snap := RaceSnapshot{
		RaceID:         group.ID,
		Time:           group.Time,
		StakePool:      stakePool,
		BankrollBefore: s.CurrentBankroll,
	}

	for _, row := range rows {
		if row.Decision.Placed {
			snap.BetsPlaced++
			snap.Staked += row.Decision.StakedAmount()
		}
		snap.Profit += row.Decision.Return
	}

	s.CurrentBankroll += snap.Profit
	if s.CurrentBankroll > s.MaxBankroll {
		s.MaxBankroll = s.CurrentBankroll
	}
	drawdown := s.MaxBankroll - s.CurrentBankroll
	if drawdown > s.MaxDrawdown {
		s.MaxDrawdown = drawdown
	}

	snap.BankrollAfter = s.CurrentBankroll
	snap.MaxBankroll = s.MaxBankroll
	snap.Drawdown = drawdown

	for i := range rows {
		rows[i].StakePool = stakePool
		rows[i].BankrollAfter = snap.BankrollAfter
		rows[i].MaxBankroll = snap.MaxBankroll
		rows[i].Drawdown = snap.Drawdown
	}

	s.Snapshots = append(s.Snapshots, snap)
	s.RecordEquityPoint(snap)
	return snap
}

// GetCurrentDrawdown returns the drawdown as a fraction of the running maximum
func (s *SimulationState) GetCurrentDrawdown() float64 {
	if s.MaxBankroll <= 0 {
		return 0
	}
	drawdown := (s.MaxBankroll - s.CurrentBankroll) / s.MaxBankroll
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an equity point to the curve
func (s *SimulationState) RecordEquityPoint(snap RaceSnapshot) {
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:       snap.Time,
		RaceID:     snap.RaceID,
		Value:      snap.BankrollAfter,
		Drawdown:   snap.Drawdown,
		RaceProfit: snap.Profit,
	})
}
