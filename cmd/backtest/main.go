// Package main provides the entry point for the race simulation CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourusername/race-kelly-sim/internal/config"
	"github.com/yourusername/race-kelly-sim/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type runFlags struct {
	input     string
	output    string
	stakeMode string
	bankroll  float64
}

var (
	configFile string
	flags      runFlags
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "race-kelly-sim",
		Short:         "Backtest Kelly, fixed and win-rate staking on race predictions",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	run := newRunCmd()
	root.AddCommand(run, newValidateCmd(), newHistoryCmd())
	// bare invocation runs the simulation
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation over a predictions file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, flags)
			if err != nil {
				return err
			}
			logr, err := logger.NewFromConfig(cfg.App)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = runSimulation(ctx, cfg, logr, cmd.OutOrStdout())
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Predictions CSV path or http(s) URL (overrides input.path)")
	f.StringVarP(&flags.output, "output", "o", "", "Output directory (overrides output.dir)")
	f.StringVar(&flags.stakeMode, "stake-mode", "", "Stake mode: kelly, fixed or winrate")
	f.Float64Var(&flags.bankroll, "bankroll", 0, "Starting bankroll")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the configuration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, flags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: stake_mode=%s bankroll=%.2f input=%s\n",
				cfg.Simulation.StakeMode, cfg.Simulation.InitialBankroll, cfg.Input.Path)
			return nil
		},
	}
}

// loadConfig loads .env, the config file and environment overrides, applies
// CLI overrides and optional AWS secrets, then validates
func loadConfig(path string, overrides runFlags) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(cfg, overrides)

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, f runFlags) {
	if f.input != "" {
		cfg.Input.Path = f.input
	}
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.stakeMode != "" {
		cfg.Simulation.StakeMode = f.stakeMode
	}
	if f.bankroll > 0 {
		cfg.Simulation.InitialBankroll = f.bankroll
	}
}
