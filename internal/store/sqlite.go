package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

const (
	errScanRun  = "failed to scan simulation run: %w"
	runColumns  = `id, run_date, input_path, stake_mode, initial_bankroll, final_bankroll,
		total_bets, total_staked, total_profit, max_drawdown, races_settled, races_skipped,
		interrupted, parameters, summary, bankroll_curve, created_at`
	sqliteStamp = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLiteRunRepository implements RunRepository on SQLite
type SQLiteRunRepository struct {
	db *sql.DB
}

// NewSQLiteRunRepository wraps an open, migrated SQLite database
func NewSQLiteRunRepository(db *sql.DB) *SQLiteRunRepository {
	return &SQLiteRunRepository{db: db}
}

// SaveRun inserts a finished run
func (r *SQLiteRunRepository) SaveRun(ctx context.Context, run *models.SimulationRun) error {
	query := `INSERT INTO simulation_runs (` + runColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID.String(), run.RunDate.UTC().Format(sqliteStamp), run.InputPath, run.StakeMode,
		run.InitialBankroll, run.FinalBankroll, run.TotalBets, run.TotalStaked, run.TotalProfit,
		run.MaxDrawdown, run.RacesSettled, run.RacesSkipped, run.Interrupted,
		string(run.Parameters), string(run.Summary), string(run.BankrollCurve),
		run.CreatedAt.UTC().Format(sqliteStamp),
	)
	if err != nil {
		return fmt.Errorf("failed to save simulation run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id
func (r *SQLiteRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE id = ?`
	run, err := scanSQLiteRun(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("simulation run %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanRun, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (r *SQLiteRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs ORDER BY run_date DESC, created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SimulationRun
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database
func (r *SQLiteRunRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*models.SimulationRun, error) {
	var (
		run                    models.SimulationRun
		id, runDate, createdAt string
		params, summary, curve string
	)
	if err := row.Scan(
		&id, &runDate, &run.InputPath, &run.StakeMode, &run.InitialBankroll, &run.FinalBankroll,
		&run.TotalBets, &run.TotalStaked, &run.TotalProfit, &run.MaxDrawdown, &run.RacesSettled, &run.RacesSkipped,
		&run.Interrupted, &params, &summary, &curve, &createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if run.RunDate, err = time.Parse(sqliteStamp, runDate); err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(sqliteStamp, createdAt); err != nil {
		return nil, err
	}
	run.Parameters = json.RawMessage(params)
	run.Summary = json.RawMessage(summary)
	run.BankrollCurve = json.RawMessage(curve)
	return &run, nil
}
