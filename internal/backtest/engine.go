package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/logger"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

// Observer receives engine events, e.g. for metrics
type Observer interface {
	ObserveRaceSkipped(reason string)
	ObserveDecision(decision models.BetDecision)
	ObserveRaceSettled(stakePool, bankroll, maxDrawdown float64)
}

type nopObserver struct{}

func (nopObserver) ObserveRaceSkipped(string) {}
func (nopObserver) ObserveDecision(models.BetDecision) {}
func (nopObserver) ObserveRaceSettled(float64, float64, float64) {}

// SkippedRace records a race dropped before staking
type SkippedRace struct {
	RaceID    string     `json:"race_id"`
	Time      time.Time  `json:"time"`
	Track     string     `json:"track"`
	FieldSize int        `json:"field_size"`
	Reason    SkipReason `json:"reason"`
}

// Result is everything a run produced, possibly partial when Interrupted
type Result struct {
	Config      SimulationConfig
	Ledger      []models.LedgerRow
	Rejected    []models.LedgerRow
	Skipped     []SkippedRace
	State       *SimulationState
	Interrupted bool
	Duration    time.Duration
}

// Empty reports whether no race was settled
func (r *Result) Empty() bool {
	return r == nil || r.State == nil || len(r.State.Snapshots) == 0
}

// Engine runs the chronological race loop
type Engine struct {
	config    SimulationConfig
	admission RaceAdmission
	filter    BetFilter
	sizer     StakeSizer
	logger    *logrus.Logger
	simLog    *logger.SimulationLogger
	audit     *logger.AuditLogger
	observer  Observer
}

// NewEngine creates a new simulation engine. Configuration problems are
// reported here, before any race is processed.
func NewEngine(cfg SimulationConfig, log *logrus.Logger, observer Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	sizer, err := NewStakeSizer(cfg)
	if err != nil {
		return nil, err
	}
	filter, err := NewBetFilter(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &Engine{
		config:    cfg,
		admission: NewRaceAdmission(cfg.AllowedRanks, cfg.FieldSizeBands),
		filter:    filter,
		sizer:     sizer,
		logger:    log,
		simLog:    logger.NewSimulationLogger(log),
		audit:     logger.NewAuditLogger(log),
		observer:  observer,
	}, nil
}

// Config returns the simulation configuration
func (e *Engine) Config() SimulationConfig {
	return e.config
}

// Run processes groups in order. Groups must be strictly increasing in start
// time. Cancelling ctx stops the loop between races and returns the partial
// result with Interrupted set.
func (e *Engine) Run(ctx context.Context, groups []models.RaceGroup) (*Result, error) {
	if err := CheckChronological(groups); err != nil {
		return nil, err
	}

	start := time.Now()
	state := NewSimulationState(e.config.InitialBankroll)
	result := &Result{Config: e.config, State: state}
	e.simLog.LogRunStarted(e.sizer.Mode(), e.config.InitialBankroll, len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			e.simLog.LogRunInterrupted(len(state.Snapshots), err)
			break
		}

		rows, reason, ok := e.processRace(group, state)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedRace{
				RaceID:    group.ID,
				Time:      group.Time,
				Track:     group.Track,
				FieldSize: group.FieldSize(),
				Reason:    reason,
			})
			e.observer.ObserveRaceSkipped(string(reason))
			e.simLog.LogRaceSkipped(group.ID, group.FieldSize(), string(reason))
			e.audit.LogRejectedRace(group, string(reason))
			continue
		}

		result.Ledger = append(result.Ledger, rows...)
		for _, row := range rows {
			if !row.Decision.Placed {
				result.Rejected = append(result.Rejected, row)
			}
		}
	}

	result.Duration = time.Since(start)
	e.simLog.LogRunCompleted(len(state.Snapshots), len(result.Skipped), countPlaced(result.Ledger), state.CurrentBankroll, result.Duration)
	return result, nil
}

func (e *Engine) processRace(group models.RaceGroup, state *SimulationState) ([]models.LedgerRow, SkipReason, bool) {
	admitted, reason, ok := e.admission.Admit(group)
	if !ok {
		return nil, reason, false
	}

	edges, err := NormalizeRace(group.Entries)
	if err != nil {
		return nil, SkipDegenerate, false
	}

	fieldSize := group.FieldSize()
	pool := state.StakePool(e.config.BankrollFraction)

	rows := make([]models.LedgerRow, len(admitted))
	var placedRows []int
	var placedEdges []models.Edge
	for i, idx := range admitted {
		entry, edge := group.Entries[idx], edges[idx]
		reasons, threshold := e.filter.Evaluate(entry, edge, fieldSize)
		rows[i] = models.LedgerRow{
			Entry: entry,
			Edge:  edge,
			Decision: models.BetDecision{
				Reasons:          reasons,
				WinRateThreshold: threshold,
				Placed:           reasons.Empty(),
				Stake:            e.config.PlaceholderStake,
			},
		}
		if reasons.Empty() {
			placedRows = append(placedRows, i)
			placedEdges = append(placedEdges, edge)
		}
	}

	stakes := e.sizer.Size(pool, placedEdges)
	ApplyCapitalCap(stakes, pool)
	for j, i := range placedRows {
		rows[i].Decision.Stake = stakes[j]
	}

	for i := range rows {
		e.settleEntry(&rows[i])
	}

	prevMaxDrawdown := state.MaxDrawdown
	snap := state.SettleRace(group, pool, rows)

	for _, row := range rows {
		e.observer.ObserveDecision(row.Decision)
		e.audit.LogBetDecision(row)
	}
	e.observer.ObserveRaceSettled(pool, snap.BankrollAfter, state.MaxDrawdown)
	e.simLog.LogRaceSettled(group.ID, snap.BetsPlaced, pool, snap.Profit, snap.BankrollAfter)
	if state.MaxDrawdown > prevMaxDrawdown {
		e.simLog.LogDrawdown(group.ID, snap.Drawdown, snap.MaxBankroll, snap.BankrollAfter)
	}

	return rows, "", true
}

// settleEntry fills in the realized return. Non-placed runners never move the
// bankroll, whatever their placeholder stake.
func (e *Engine) settleEntry(row *models.LedgerRow) {
	d := &row.Decision
	d.Won = row.Entry.IsWinner()
	d.Return = 0

	if !d.Placed {
		return
	}
	if !row.Entry.HasResult() && e.config.VoidMissingResults {
		d.Voided = true
		return
	}
	if d.Won {
		d.Return = (row.Entry.Odds - 1) * d.Stake
		return
	}
	d.Return = -d.Stake
}

// CheckChronological verifies groups are strictly increasing in start time
// with no repeated race id.
func CheckChronological(groups []models.RaceGroup) error {
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		if seen[g.ID] {
			return fmt.Errorf("%w: race %s appears more than once", models.ErrUnsortedInput, g.ID)
		}
		seen[g.ID] = true
		if i > 0 && !g.Time.After(groups[i-1].Time) {
			return fmt.Errorf("%w: race %s at %s does not follow %s", models.ErrUnsortedInput,
				g.ID, g.Time.Format(time.RFC3339), groups[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

func countPlaced(rows []models.LedgerRow) int {
	n := 0
	for _, row := range rows {
		if row.Decision.Placed {
			n++
		}
	}
	return n
}
