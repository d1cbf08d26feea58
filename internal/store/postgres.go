package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/race-kelly-sim/internal/database"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// SaveRun inserts a finished run
func (r *PostgresRunRepository) SaveRun(ctx context.Context, run *models.SimulationRun) error {
	query := `
		INSERT INTO simulation_runs (` + runColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.RunDate, run.InputPath, run.StakeMode,
		run.InitialBankroll, run.FinalBankroll, run.TotalBets, run.TotalStaked, run.TotalProfit,
		run.MaxDrawdown, run.RacesSettled, run.RacesSkipped, run.Interrupted,
		run.Parameters, run.Summary, run.BankrollCurve, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save simulation run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id
func (r *PostgresRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE id = $1`
	run, err := scanPostgresRun(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("simulation run %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanRun, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (r *PostgresRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs ORDER BY run_date DESC LIMIT $1`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SimulationRun
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the connection pool
func (r *PostgresRunRepository) Close() error {
	r.db.Close()
	return nil
}

func scanPostgresRun(row pgx.Row) (*models.SimulationRun, error) {
	run := &models.SimulationRun{}
	if err := row.Scan(
		&run.ID, &run.RunDate, &run.InputPath, &run.StakeMode, &run.InitialBankroll, &run.FinalBankroll,
		&run.TotalBets, &run.TotalStaked, &run.TotalProfit, &run.MaxDrawdown, &run.RacesSettled, &run.RacesSkipped,
		&run.Interrupted, &run.Parameters, &run.Summary, &run.BankrollCurve, &run.CreatedAt,
	); err != nil {
		return nil, err
	}
	return run, nil
}
