package backtest

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// GroupStat summarizes placed bets sharing one grouping label
type GroupStat struct {
	Group       string  `json:"group"`
	TotalBets   int     `json:"total_bets"`
	TotalR      float64 `json:"total_r"`
	WinningR    float64 `json:"winning_r"`
	LosingR     float64 `json:"losing_r"`
	WinRatePct  float64 `json:"win_rate_pct"`
	TotalStaked float64 `json:"total_staked"`
	TotalProfit float64 `json:"total_profit"`

	wins int
}

// GroupedStats holds every grouping of the placed bets
type GroupedStats struct {
	ByOddsBand  []GroupStat `json:"by_odds_band"`
	ByClass     []GroupStat `json:"by_class"`
	ByFieldSize []GroupStat `json:"by_field_size"`
	ByTrack     []GroupStat `json:"by_track"`
}

type oddsBin struct {
	upper float64
	label string
}

var oddsBins = []oddsBin{
	{5, "(0,5]"},
	{10, "(5,10]"},
	{15, "(10,15]"},
	{25, "(15,25]"},
	{50, "(25,50]"},
	{100, "(50,100]"},
}

type fieldSizeBin struct {
	upper int
	label string
}

var fieldSizeBins = []fieldSizeBin{
	{4, "1-4"},
	{5, "5"},
	{6, "6"},
	{7, "7"},
	{8, "8"},
	{9, "9"},
	{10, "10"},
	{13, "11-13"},
	{20, "14-20"},
}

// OddsBand returns the odds bin label for decimal odds
func OddsBand(odds float64) string {
	for _, b := range oddsBins {
		if odds <= b.upper {
			return b.label
		}
	}
	return "100+"
}

// FieldSizeBin returns the reporting bin for a field size
func FieldSizeBin(n int) string {
	for _, b := range fieldSizeBins {
		if n <= b.upper {
			return b.label
		}
	}
	return "21+"
}

// ClassNumber extracts the digits of a class label, e.g. "Class 4" -> 4
func ClassNumber(label string) (int, bool) {
	var digits strings.Builder
	for _, r := range label {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// CalculateGroupedStats groups placed, non-voided bets by odds band, class,
// field size and track.
func CalculateGroupedStats(ledger []models.LedgerRow) GroupedStats {
	odds := newGroupAccumulator()
	class := newGroupAccumulator()
	field := newGroupAccumulator()
	track := newGroupAccumulator()

	for _, row := range ledger {
		if !row.Decision.Placed || row.Decision.Voided {
			continue
		}
		odds.add(OddsBand(row.Entry.Odds), row.Decision)
		if n, ok := ClassNumber(row.Entry.Class); ok {
			class.add(strconv.Itoa(n), row.Decision)
		}
		field.add(FieldSizeBin(row.Entry.FieldSize), row.Decision)
		if row.Entry.Track != "" {
			track.add(row.Entry.Track, row.Decision)
		}
	}

	byTrack := track.stats()
	sort.SliceStable(byTrack, func(i, j int) bool {
		if byTrack[i].TotalR != byTrack[j].TotalR {
			return byTrack[i].TotalR > byTrack[j].TotalR
		}
		return byTrack[i].Group < byTrack[j].Group
	})

	byClass := class.stats()
	sort.SliceStable(byClass, func(i, j int) bool {
		a, _ := strconv.Atoi(byClass[i].Group)
		b, _ := strconv.Atoi(byClass[j].Group)
		return a < b
	})

	return GroupedStats{
		ByOddsBand:  odds.ordered(oddsLabels()),
		ByClass:     byClass,
		ByFieldSize: field.ordered(fieldSizeLabels()),
		ByTrack:     byTrack,
	}
}

type groupAccumulator struct {
	groups map[string]*GroupStat
	order  []string
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{groups: make(map[string]*GroupStat)}
}

func (a *groupAccumulator) add(label string, d models.BetDecision) {
	g, ok := a.groups[label]
	if !ok {
		g = &GroupStat{Group: label}
		a.groups[label] = g
		a.order = append(a.order, label)
	}
	r := d.RMultiple()
	g.TotalBets++
	g.TotalR += r
	if r > 0 {
		g.WinningR += r
		g.wins++
	} else if r < 0 {
		g.LosingR += r
	}
	g.TotalStaked += d.StakedAmount()
	g.TotalProfit += d.Return
	g.WinRatePct = roundTo(float64(g.wins)/float64(g.TotalBets)*100, 1)
}

func (a *groupAccumulator) stats() []GroupStat {
	out := make([]GroupStat, 0, len(a.order))
	for _, label := range a.order {
		out = append(out, *a.groups[label])
	}
	return out
}

// ordered returns groups in the given label order, then any others
func (a *groupAccumulator) ordered(labels []string) []GroupStat {
	out := make([]GroupStat, 0, len(a.groups))
	used := make(map[string]bool, len(labels))
	for _, label := range labels {
		if g, ok := a.groups[label]; ok {
			out = append(out, *g)
			used[label] = true
		}
	}
	for _, label := range a.order {
		if !used[label] {
			out = append(out, *a.groups[label])
		}
	}
	return out
}

func oddsLabels() []string {
	labels := make([]string, 0, len(oddsBins)+1)
	for _, b := range oddsBins {
		labels = append(labels, b.label)
	}
	return append(labels, "100+")
}

func fieldSizeLabels() []string {
	labels := make([]string, 0, len(fieldSizeBins)+1)
	for _, b := range fieldSizeBins {
		labels = append(labels, b.label)
	}
	return append(labels, "21+")
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
