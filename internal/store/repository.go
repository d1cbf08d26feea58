// Package store persists finished simulation runs.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
	"github.com/yourusername/race-kelly-sim/internal/config"
	"github.com/yourusername/race-kelly-sim/internal/database"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

// RunRepository defines the interface for simulation run persistence
type RunRepository interface {
	SaveRun(ctx context.Context, run *models.SimulationRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error)
	Close() error
}

// Open connects the configured store backend and applies its schema
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (RunRepository, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		db, err := database.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.WithField("path", cfg.Store.SQLitePath).Info("Opened SQLite results store")
		return NewSQLiteRunRepository(db), nil
	case "postgres":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"host":     cfg.Store.Postgres.Host,
			"database": cfg.Store.Postgres.Name,
		}).Info("Connected to PostgreSQL results store")
		return NewPostgresRunRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// BuildRun converts a finished run into its persisted form. summary may be
// nil for a run that settled no race.
func BuildRun(res *backtest.Result, summary *backtest.Summary, inputPath string, now time.Time) (*models.SimulationRun, error) {
	params, err := json.Marshal(res.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	curve := res.State.EquityCurve
	if curve == nil {
		curve = backtest.EquityCurve{}
	}
	curveJSON, err := json.Marshal(curve)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bankroll curve: %w", err)
	}

	run := &models.SimulationRun{
		ID:              uuid.New(),
		RunDate:         now.UTC(),
		InputPath:       inputPath,
		StakeMode:       res.Config.StakeMode,
		InitialBankroll: res.State.InitialBankroll,
		FinalBankroll:   res.State.CurrentBankroll,
		MaxDrawdown:     res.State.MaxDrawdown,
		RacesSettled:    len(res.State.Snapshots),
		RacesSkipped:    len(res.Skipped),
		Interrupted:     res.Interrupted,
		Parameters:      params,
		Summary:         summaryJSON,
		BankrollCurve:   curveJSON,
		CreatedAt:       now.UTC(),
	}
	if summary != nil {
		run.TotalBets = summary.TotalBets
		run.TotalStaked = summary.TotalStaked
		run.TotalProfit = summary.TotalProfit
	}
	return run, nil
}
