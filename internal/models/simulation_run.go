package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SimulationRun represents a persisted, finished simulation run
type SimulationRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	RunDate         time.Time       `db:"run_date" json:"run_date"`
	InputPath       string          `db:"input_path" json:"input_path"`
	StakeMode       string          `db:"stake_mode" json:"stake_mode"`
	InitialBankroll float64         `db:"initial_bankroll" json:"initial_bankroll"`
	FinalBankroll   float64         `db:"final_bankroll" json:"final_bankroll"`
	TotalBets       int             `db:"total_bets" json:"total_bets"`
	TotalStaked     float64         `db:"total_staked" json:"total_staked"`
	TotalProfit     float64         `db:"total_profit" json:"total_profit"`
	MaxDrawdown     float64         `db:"max_drawdown" json:"max_drawdown"`
	RacesSettled    int             `db:"races_settled" json:"races_settled"`
	RacesSkipped    int             `db:"races_skipped" json:"races_skipped"`
	Interrupted     bool            `db:"interrupted" json:"interrupted"`
	Parameters      json.RawMessage `db:"parameters" json:"parameters"`
	Summary         json.RawMessage `db:"summary" json:"summary"`
	BankrollCurve   json.RawMessage `db:"bankroll_curve" json:"bankroll_curve"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
