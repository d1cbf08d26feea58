// Package report renders simulation results as CSV, JSON, YAML, HTML and
// console output.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
	"github.com/yourusername/race-kelly-sim/internal/config"
)

// Output file names inside the output directory
const (
	LedgerFile     = "ledger.csv"
	RejectedFile   = "rejected.csv"
	SkippedFile    = "skipped_races.csv"
	CurveFile      = "bankroll_curve.csv"
	SummaryFile    = "summary.json"
	GroupedFile    = "grouped_stats.json"
	ConfigFile     = "config_snapshot.yaml"
	HTMLFile       = "report.html"
	groupedCSVTmpl = "grouped_%s.csv"
)

// Bundle is everything a report is rendered from. Summary is nil when no
// race was settled.
type Bundle struct {
	Title   string
	Result  *backtest.Result
	Summary *backtest.Summary
	Grouped backtest.GroupedStats
	Config  *config.Config
}

// NewBundle computes the summary and grouped statistics for a result
func NewBundle(title string, res *backtest.Result, cfg *config.Config) Bundle {
	b := Bundle{Title: title, Result: res, Config: cfg}
	if summary, err := backtest.CalculateSummary(res); err == nil {
		b.Summary = &summary
		b.Grouped = backtest.CalculateGroupedStats(res.Ledger)
	}
	return b
}

// Options selects the optional outputs
type Options struct {
	WriteHTML bool
	WriteJSON bool
}

// WriteAll writes every report file into dir and returns the paths written
func WriteAll(dir string, b Bundle, opts Options) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(w io.Writer) error) error {
		path := filepath.Join(dir, name)
		if err := writeFile(path, fn); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	res := b.Result
	if err := write(LedgerFile, func(w io.Writer) error { return WriteLedgerCSV(w, res.Ledger) }); err != nil {
		return written, err
	}
	if err := write(RejectedFile, func(w io.Writer) error { return WriteLedgerCSV(w, res.Rejected) }); err != nil {
		return written, err
	}
	if err := write(SkippedFile, func(w io.Writer) error { return WriteSkippedCSV(w, res.Skipped) }); err != nil {
		return written, err
	}
	if err := write(CurveFile, func(w io.Writer) error {
		_, err := io.WriteString(w, res.State.EquityCurve.ToCSV())
		return err
	}); err != nil {
		return written, err
	}

	// grouped statistics are suppressed for an empty run
	if b.Summary != nil {
		for _, g := range groupings(b.Grouped) {
			stats := g.stats
			if err := write(fmt.Sprintf(groupedCSVTmpl, g.name), func(w io.Writer) error { return WriteGroupCSV(w, stats) }); err != nil {
				return written, err
			}
		}
	}

	if opts.WriteJSON {
		if err := write(SummaryFile, func(w io.Writer) error { return writeJSON(w, NewRunDocument(b)) }); err != nil {
			return written, err
		}
		if b.Summary != nil {
			if err := write(GroupedFile, func(w io.Writer) error { return writeJSON(w, b.Grouped) }); err != nil {
				return written, err
			}
		}
	}

	if b.Config != nil {
		if err := write(ConfigFile, func(w io.Writer) error { return WriteConfigSnapshot(w, b.Config) }); err != nil {
			return written, err
		}
	}

	if opts.WriteHTML {
		if err := write(HTMLFile, func(w io.Writer) error { return GenerateHTMLReport(w, b) }); err != nil {
			return written, err
		}
	}

	return written, nil
}

type namedGroup struct {
	name  string
	title string
	stats []backtest.GroupStat
}

func groupings(g backtest.GroupedStats) []namedGroup {
	return []namedGroup{
		{"odds_band", "Odds band", g.ByOddsBand},
		{"class", "Class", g.ByClass},
		{"field_size", "Field size", g.ByFieldSize},
		{"track", "Track", g.ByTrack},
	}
}

func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// money renders an amount rounded to cents
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func pct(v float64) string {
	return decimal.NewFromFloat(v * 100).StringFixed(2) + "%"
}

func ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}
