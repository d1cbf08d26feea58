package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
)

const emptyRunMessage = "No races were settled; statistics and chart are not available."

// GenerateConsoleReport formats the run for terminal output
func GenerateConsoleReport(b Bundle) string {
	var builder strings.Builder
	builder.WriteString("Simulation Report\n")
	builder.WriteString("=================\n")
	if b.Title != "" {
		builder.WriteString(fmt.Sprintf("Run: %s\n", b.Title))
	}
	builder.WriteString(fmt.Sprintf("Stake Mode: %s\n", b.Result.Config.StakeMode))
	if b.Result.Interrupted {
		builder.WriteString("Status: INTERRUPTED (partial results)\n")
	}
	builder.WriteString(fmt.Sprintf("Races Skipped: %d\n", len(b.Result.Skipped)))

	if b.Summary == nil {
		builder.WriteString(emptyRunMessage + "\n")
		return builder.String()
	}
	s := b.Summary

	builder.WriteString(fmt.Sprintf("Races Settled: %d\n", s.RacesSettled))
	builder.WriteString(fmt.Sprintf("Total Bets: %d (won %d, lost %d, void %d)\n", s.TotalBets, s.WinningBets, s.LosingBets, s.VoidedBets))
	builder.WriteString(fmt.Sprintf("Total Staked: %s\n", money(s.TotalStaked)))
	builder.WriteString(fmt.Sprintf("Total Profit: %s\n", money(s.TotalProfit)))
	builder.WriteString(fmt.Sprintf("Initial Bankroll: %s\n", money(s.InitialBankroll)))
	builder.WriteString(fmt.Sprintf("Final Bankroll: %s\n", money(s.FinalBankroll)))
	builder.WriteString(fmt.Sprintf("Total Return: %s\n", pct(s.TotalReturn)))
	builder.WriteString(fmt.Sprintf("Win Rate: %s\n", pct(s.WinRate)))
	builder.WriteString(fmt.Sprintf("Average R: %s\n", ratio(s.AverageR)))
	builder.WriteString(fmt.Sprintf("Total Winning R: %s\n", ratio(s.TotalWinningR)))
	builder.WriteString(fmt.Sprintf("Total Losing R: %s\n", ratio(s.TotalLosingR)))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %s (%s of peak)\n", money(s.MaxDrawdown), pct(s.MaxDrawdownPct)))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", s.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio (per race): %.4f\n", s.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Largest Win: %s\n", money(s.LargestWin)))
	builder.WriteString(fmt.Sprintf("Largest Loss: %s\n", money(s.LargestLoss)))

	if len(s.SkipReasons) > 0 {
		reasons := make([]string, 0, len(s.SkipReasons))
		for reason := range s.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		builder.WriteString("\nSkipped races by reason\n")
		for _, reason := range reasons {
			builder.WriteString(fmt.Sprintf("  %-12s %d\n", reason, s.SkipReasons[reason]))
		}
	}

	for _, g := range groupings(b.Grouped) {
		writeGroupTable(&builder, g.title, g.stats)
	}
	return builder.String()
}

func writeGroupTable(builder *strings.Builder, title string, stats []backtest.GroupStat) {
	if len(stats) == 0 {
		return
	}
	builder.WriteString(fmt.Sprintf("\nBy %s\n", strings.ToLower(title)))
	builder.WriteString(fmt.Sprintf("  %-14s %6s %10s %10s %10s %8s %12s\n", title, "Bets", "Total R", "Win R", "Loss R", "Win %", "Profit"))
	for _, g := range stats {
		builder.WriteString(fmt.Sprintf("  %-14s %6d %10.2f %10.2f %10.2f %8.1f %12s\n",
			g.Group, g.TotalBets, g.TotalR, g.WinningR, g.LosingR, g.WinRatePct, money(g.TotalProfit)))
	}
}
