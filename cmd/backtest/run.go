package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
	"github.com/yourusername/race-kelly-sim/internal/config"
	"github.com/yourusername/race-kelly-sim/internal/ingest"
	"github.com/yourusername/race-kelly-sim/internal/metrics"
	"github.com/yourusername/race-kelly-sim/internal/report"
	"github.com/yourusername/race-kelly-sim/internal/store"
)

// Run statuses recorded in backtest_runs_total
const (
	statusSuccess     = "success"
	statusEmpty       = "empty"
	statusInterrupted = "interrupted"
	statusFailure     = "failure"
)

// runSimulation loads predictions, runs the engine and writes every output
func runSimulation(ctx context.Context, cfg *config.Config, logr *logrus.Logger, out io.Writer) (*backtest.Result, error) {
	start := time.Now()
	mode := cfg.Simulation.StakeMode

	res, err := simulate(ctx, cfg, logr, out)
	status := runStatus(res, err)
	metrics.RecordBacktestRun(mode, status, time.Since(start).Seconds())
	if res != nil {
		metrics.UpdateFinalBankroll(mode, res.State.CurrentBankroll)
	}

	if cfg.Metrics.Enabled {
		if werr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
			logr.WithError(werr).Warn("Failed to write metrics textfile")
		} else {
			logr.WithField("path", cfg.Metrics.TextfilePath).Debug("Wrote metrics textfile")
		}
	}
	return res, err
}

func simulate(ctx context.Context, cfg *config.Config, logr *logrus.Logger, out io.Writer) (*backtest.Result, error) {
	src := ingest.NewSource(cfg, logr)
	records, loadReport, err := ingest.NewCSVLoader(cfg.Input, logr).LoadSource(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	groups := ingest.BuildRaceGroups(records, cfg.Simulation.TrackFilter)
	logr.WithFields(logrus.Fields{
		"source":  src.Name(),
		"rows":    loadReport.RowsRead,
		"loaded":  loadReport.Loaded,
		"dropped": len(loadReport.Dropped),
		"races":   len(groups),
	}).Info("Loaded predictions")

	simCfg, err := backtest.FromConfig(&cfg.Simulation)
	if err != nil {
		return nil, err
	}

	var observer backtest.Observer
	if cfg.Metrics.Enabled {
		observer = metrics.NewSimulationCollector()
	}
	engine, err := backtest.NewEngine(simCfg, logr, observer)
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(ctx, groups)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%s)", filepath.Base(cfg.Input.Path), simCfg.StakeMode)
	bundle := report.NewBundle(title, res, cfg)
	fmt.Fprint(out, report.GenerateConsoleReport(bundle))

	written, err := report.WriteAll(cfg.Output.Dir, bundle, report.Options{
		WriteHTML: cfg.Output.WriteHTML,
		WriteJSON: cfg.Output.WriteJSON,
	})
	if err != nil {
		return res, err
	}
	logr.WithFields(logrus.Fields{"dir": cfg.Output.Dir, "files": len(written)}).Info("Wrote reports")

	if cfg.Store.Enabled {
		if err := persistRun(ctx, cfg, logr, bundle); err != nil {
			return res, err
		}
	}
	return res, nil
}

func persistRun(ctx context.Context, cfg *config.Config, logr *logrus.Logger, bundle report.Bundle) error {
	// the run context may already be cancelled after an interrupt
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	repo, err := store.Open(saveCtx, cfg, logr)
	if err != nil {
		return fmt.Errorf("failed to open results store: %w", err)
	}
	defer repo.Close()

	run, err := store.BuildRun(bundle.Result, bundle.Summary, cfg.Input.Path, time.Now())
	if err != nil {
		return err
	}
	if err := repo.SaveRun(saveCtx, run); err != nil {
		return err
	}
	logr.WithField("run_id", run.ID).Info("Saved simulation run")
	return nil
}

func runStatus(res *backtest.Result, err error) string {
	switch {
	case err != nil:
		return statusFailure
	case res.Interrupted:
		return statusInterrupted
	case res.Empty():
		return statusEmpty
	default:
		return statusSuccess
	}
}

