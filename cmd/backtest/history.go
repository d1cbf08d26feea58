package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/race-kelly-sim/internal/logger"
	"github.com/yourusername/race-kelly-sim/internal/models"
	"github.com/yourusername/race-kelly-sim/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, runFlags{})
			if err != nil {
				return err
			}
			if !cfg.Store.Enabled {
				return fmt.Errorf("results store is disabled (store.enabled=false)")
			}
			logr, err := logger.NewFromConfig(cfg.App)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			repo, err := store.Open(ctx, cfg, logr)
			if err != nil {
				return err
			}
			defer repo.Close()

			if runID != "" {
				id, err := uuid.Parse(runID)
				if err != nil {
					return fmt.Errorf("invalid run id: %w", err)
				}
				run, err := repo.GetRun(ctx, id)
				if err != nil {
					return err
				}
				printRun(cmd.OutOrStdout(), run)
				fmt.Fprintf(cmd.OutOrStdout(), "Parameters: %s\nSummary: %s\n", run.Parameters, run.Summary)
				return nil
			}

			runs, err := repo.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
			}
			for _, run := range runs {
				printRun(cmd.OutOrStdout(), run)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "id", "", "Show a single run in full")
	return cmd
}

func printRun(w io.Writer, run *models.SimulationRun) {
	status := ""
	if run.Interrupted {
		status = " [interrupted]"
	}
	fmt.Fprintf(w, "%s  %s  %-7s  bets=%d  bankroll %.2f -> %.2f  max_dd=%.2f  races=%d/%d%s\n",
		run.ID, run.RunDate.Format(time.RFC3339), run.StakeMode, run.TotalBets,
		run.InitialBankroll, run.FinalBankroll, run.MaxDrawdown,
		run.RacesSettled, run.RacesSettled+run.RacesSkipped, status)
}
