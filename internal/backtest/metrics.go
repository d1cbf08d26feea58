package backtest

import (
	"math"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// Summary represents overall run performance
type Summary struct {
	TotalBets       int            `json:"total_bets"`
	WinningBets     int            `json:"winning_bets"`
	LosingBets      int            `json:"losing_bets"`
	VoidedBets      int            `json:"voided_bets"`
	WinRate         float64        `json:"win_rate"`
	TotalStaked     float64        `json:"total_staked"`
	TotalProfit     float64        `json:"total_profit"`
	InitialBankroll float64        `json:"initial_bankroll"`
	FinalBankroll   float64        `json:"final_bankroll"`
	TotalReturn     float64        `json:"total_return"`
	AverageR        float64        `json:"average_r"`
	TotalWinningR   float64        `json:"total_winning_r"`
	TotalLosingR    float64        `json:"total_losing_r"`
	MaxDrawdown     float64        `json:"max_drawdown"`
	MaxDrawdownPct  float64        `json:"max_drawdown_pct"`
	ProfitFactor    float64        `json:"profit_factor"`
	SharpeRatio     float64        `json:"sharpe_ratio"`
	SortinoRatio    float64        `json:"sortino_ratio"`
	LargestWin      float64        `json:"largest_win"`
	LargestLoss     float64        `json:"largest_loss"`
	Expectancy      float64        `json:"expectancy"`
	RacesSettled    int            `json:"races_settled"`
	RacesSkipped    int            `json:"races_skipped"`
	SkipReasons     map[string]int `json:"skip_reasons"`
	Interrupted     bool           `json:"interrupted"`
}

// CalculateSummary computes run statistics. An empty run yields
// models.ErrEmptyResult and no statistics.
func CalculateSummary(res *Result) (Summary, error) {
	if res.Empty() {
		return Summary{}, models.ErrEmptyResult
	}
	state := res.State

	s := Summary{
		InitialBankroll: state.InitialBankroll,
		FinalBankroll:   state.CurrentBankroll,
		MaxDrawdown:     state.MaxDrawdown,
		RacesSettled:    len(state.Snapshots),
		RacesSkipped:    len(res.Skipped),
		SkipReasons:     make(map[string]int),
		Interrupted:     res.Interrupted,
	}
	for _, sk := range res.Skipped {
		s.SkipReasons[string(sk.Reason)]++
	}
	if state.InitialBankroll > 0 {
		s.TotalReturn = (state.CurrentBankroll - state.InitialBankroll) / state.InitialBankroll
	}

	var rSum float64
	var rCount int
	var grossProfit, grossLoss float64
	for _, row := range res.Ledger {
		d := row.Decision
		if !d.Placed {
			continue
		}
		s.TotalBets++
		s.TotalProfit += d.Return
		if d.Voided {
			s.VoidedBets++
			continue
		}
		s.TotalStaked += d.StakedAmount()

		r := d.RMultiple()
		rSum += r
		rCount++
		switch {
		case r > 0:
			s.TotalWinningR += r
		case r < 0:
			s.TotalLosingR += r
		}

		switch {
		case d.Return > 0:
			s.WinningBets++
			grossProfit += d.Return
			s.LargestWin = math.Max(s.LargestWin, d.Return)
		case d.Return < 0:
			s.LosingBets++
			grossLoss += -d.Return
			s.LargestLoss = math.Min(s.LargestLoss, d.Return)
		}
	}

	if rCount > 0 {
		s.AverageR = rSum / float64(rCount)
		s.Expectancy = (grossProfit - grossLoss) / float64(rCount)
		s.WinRate = float64(s.WinningBets) / float64(rCount)
	}
	s.ProfitFactor = calculateProfitFactor(grossProfit, grossLoss)
	s.MaxDrawdownPct = calculateMaxDrawdownPct(state.Snapshots)

	returns := state.EquityCurve.GetReturns(state.InitialBankroll)
	s.SharpeRatio = calculateSharpeRatio(returns)
	s.SortinoRatio = calculateSortinoRatio(returns)

	return s, nil
}

// calculateSharpeRatio is per race, not annualized: races are irregular in time
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std
}

func calculateSortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := downsideStddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std
}

func calculateMaxDrawdownPct(snaps []RaceSnapshot) float64 {
	maxDD := 0.0
	for _, snap := range snaps {
		if snap.MaxBankroll <= 0 {
			continue
		}
		maxDD = math.Max(maxDD, snap.Drawdown/snap.MaxBankroll)
	}
	return maxDD
}

func calculateProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func downsideStddev(values []float64) float64 {
	negatives := make([]float64, 0)
	for _, v := range values {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	return stddev(negatives)
}
