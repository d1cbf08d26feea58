package report

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
)

const (
	chartWidth   = 800
	chartHeight  = 300
	chartPadding = 40
)

// Chart is the inline SVG bankroll chart
type Chart struct {
	Width     int
	Height    int
	Points    string
	BaselineY string
	Left      int
	Right     int
	Top       int
	Bottom    int
	MinLabel  string
	MaxLabel  string
	Baseline  string
}

// NewChart scales the bankroll curve into the SVG viewport. The starting
// bankroll is drawn as a horizontal reference line. Returns nil for an
// empty curve.
func NewChart(curve backtest.EquityCurve, initial float64) *Chart {
	if len(curve) == 0 {
		return nil
	}
	lo, hi := curve.Bounds()
	if initial < lo {
		lo = initial
	}
	if initial > hi {
		hi = initial
	}
	if hi == lo {
		hi = lo + 1
	}

	c := &Chart{
		Width:    chartWidth,
		Height:   chartHeight,
		Left:     chartPadding,
		Right:    chartWidth - chartPadding,
		Top:      chartPadding,
		Bottom:   chartHeight - chartPadding,
		MinLabel: money(lo),
		MaxLabel: money(hi),
		Baseline: money(initial),
	}
	plotW := float64(c.Right - c.Left)
	plotH := float64(c.Bottom - c.Top)
	y := func(v float64) float64 {
		return float64(c.Bottom) - (v-lo)/(hi-lo)*plotH
	}

	// the first vertex is the starting bankroll before race one
	points := make([]string, 0, len(curve)+1)
	steps := float64(len(curve))
	points = append(points, coord(float64(c.Left), y(initial)))
	for i, p := range curve {
		x := float64(c.Left) + float64(i+1)/steps*plotW
		points = append(points, coord(x, y(p.Value)))
	}
	c.Points = strings.Join(points, " ")
	c.BaselineY = strconv.FormatFloat(y(initial), 'f', 2, 64)
	return c
}

func coord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64) + "," + strconv.FormatFloat(y, 'f', 2, 64)
}

type htmlSection struct {
	Title string
	Stats []backtest.GroupStat
}

type htmlView struct {
	Bundle
	Chart    *Chart
	Sections []htmlSection
	Empty    string
}

var htmlFuncs = template.FuncMap{
	"money":  money,
	"pct":    pct,
	"ratio":  ratio,
	"fixed1": fixed1,
}

func fixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Simulation Report{{if .Title}} - {{.Title}}{{end}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.neg { color: #b00; }
</style>
</head>
<body>
<h1>Simulation Report</h1>
{{if .Title}}<p><strong>Run:</strong> {{.Title}}</p>{{end}}
<p><strong>Stake Mode:</strong> {{.Result.Config.StakeMode}}</p>
{{if .Result.Interrupted}}<p><strong>Status:</strong> interrupted, partial results</p>{{end}}
{{if .Summary}}{{with .Summary}}
<table>
<tr><th>Races Settled</th><td>{{.RacesSettled}}</td></tr>
<tr><th>Races Skipped</th><td>{{.RacesSkipped}}</td></tr>
<tr><th>Total Bets</th><td>{{.TotalBets}}</td></tr>
<tr><th>Total Staked</th><td>{{money .TotalStaked}}</td></tr>
<tr><th>Total Profit</th><td>{{money .TotalProfit}}</td></tr>
<tr><th>Initial Bankroll</th><td>{{money .InitialBankroll}}</td></tr>
<tr><th>Final Bankroll</th><td>{{money .FinalBankroll}}</td></tr>
<tr><th>Total Return</th><td>{{pct .TotalReturn}}</td></tr>
<tr><th>Win Rate</th><td>{{pct .WinRate}}</td></tr>
<tr><th>Average R</th><td>{{ratio .AverageR}}</td></tr>
<tr><th>Total Winning R</th><td>{{ratio .TotalWinningR}}</td></tr>
<tr><th>Total Losing R</th><td>{{ratio .TotalLosingR}}</td></tr>
<tr><th>Max Drawdown</th><td>{{money .MaxDrawdown}} ({{pct .MaxDrawdownPct}})</td></tr>
<tr><th>Profit Factor</th><td>{{ratio .ProfitFactor}}</td></tr>
<tr><th>Sharpe Ratio (per race)</th><td>{{ratio .SharpeRatio}}</td></tr>
</table>
{{end}}
{{with .Chart}}
<h2>Bankroll</h2>
<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<line x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}" stroke="#888"/>
<line x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}" stroke="#888"/>
<line class="baseline" x1="{{.Left}}" y1="{{.BaselineY}}" x2="{{.Right}}" y2="{{.BaselineY}}" stroke="#c00" stroke-dasharray="4 4"/>
<polyline class="bankroll" fill="none" stroke="#06c" stroke-width="1.5" points="{{.Points}}"/>
<text x="2" y="{{.Top}}" font-size="10">{{.MaxLabel}}</text>
<text x="2" y="{{.Bottom}}" font-size="10">{{.MinLabel}}</text>
<text x="{{.Right}}" y="{{.BaselineY}}" font-size="10" text-anchor="end">start {{.Baseline}}</text>
</svg>
{{end}}
{{range .Sections}}{{if .Stats}}
<h2>By {{.Title}}</h2>
<table>
<tr><th>{{.Title}}</th><th>Bets</th><th>Total R</th><th>Winning R</th><th>Losing R</th><th>Win %</th><th>Staked</th><th>Profit</th></tr>
{{range .Stats}}<tr><td>{{.Group}}</td><td>{{.TotalBets}}</td><td{{if lt .TotalR 0.0}} class="neg"{{end}}>{{ratio .TotalR}}</td><td>{{ratio .WinningR}}</td><td>{{ratio .LosingR}}</td><td>{{fixed1 .WinRatePct}}</td><td>{{money .TotalStaked}}</td><td>{{money .TotalProfit}}</td></tr>
{{end}}</table>
{{end}}{{end}}
{{else}}
<p>{{.Empty}}</p>
{{end}}
</body>
</html>
`))

// GenerateHTMLReport renders the HTML report with an inline SVG bankroll chart
func GenerateHTMLReport(w io.Writer, b Bundle) error {
	view := htmlView{Bundle: b, Empty: emptyRunMessage}
	if b.Summary != nil {
		view.Chart = NewChart(b.Result.State.EquityCurve, b.Result.State.InitialBankroll)
		for _, g := range groupings(b.Grouped) {
			view.Sections = append(view.Sections, htmlSection{Title: g.title, Stats: g.stats})
		}
	}
	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
