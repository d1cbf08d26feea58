package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

var ledgerHeader = []string{
	"race_id", "race_time", "track", "class", "horse", "odds", "raw_probability",
	"predicted_rank", "field_size", "place", "normalized_probability", "expected_value",
	"kelly_fraction", "winrate_threshold", "reasons", "placed", "stake", "won", "voided",
	"return", "stake_pool", "bankroll_after", "max_bankroll", "drawdown",
}

// WriteLedgerCSV writes one line per ledger row
func WriteLedgerCSV(w io.Writer, rows []models.LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, row := range rows {
		e, edge, d := row.Entry, row.Edge, row.Decision
		place := ""
		if e.Place != nil {
			place = strconv.Itoa(*e.Place)
		}
		kelly := ""
		if edge.KellyDefined {
			kelly = num(edge.KellyFraction)
		}
		record := []string{
			e.RaceID,
			e.RaceTime.Format(time.RFC3339),
			e.Track,
			e.Class,
			e.Horse,
			num(e.Odds),
			num(e.RawProbability),
			strconv.Itoa(e.PredictedRank),
			strconv.Itoa(e.FieldSize),
			place,
			num(edge.Probability),
			num(edge.ExpectedValue),
			kelly,
			num(d.WinRateThreshold),
			d.Reasons.String(),
			strconv.FormatBool(d.Placed),
			money(d.Stake),
			strconv.FormatBool(d.Won),
			strconv.FormatBool(d.Voided),
			money(d.Return),
			money(row.StakePool),
			money(row.BankrollAfter),
			money(row.MaxBankroll),
			money(row.Drawdown),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSkippedCSV writes the races dropped before staking
func WriteSkippedCSV(w io.Writer, skipped []backtest.SkippedRace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"race_id", "race_time", "track", "field_size", "reason"}); err != nil {
		return err
	}
	for _, s := range skipped {
		if err := cw.Write([]string{
			s.RaceID, s.Time.Format(time.RFC3339), s.Track, strconv.Itoa(s.FieldSize), string(s.Reason),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroupCSV writes one grouping table
func WriteGroupCSV(w io.Writer, stats []backtest.GroupStat) error {
	cw := csv.NewWriter(w)
	header := []string{"group", "total_bets", "total_r", "winning_r", "losing_r", "win_rate_pct", "total_staked", "total_profit"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range stats {
		if err := cw.Write([]string{
			g.Group,
			strconv.Itoa(g.TotalBets),
			ratio(g.TotalR),
			ratio(g.WinningR),
			ratio(g.LosingR),
			fixed1(g.WinRatePct),
			money(g.TotalStaked),
			money(g.TotalProfit),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
