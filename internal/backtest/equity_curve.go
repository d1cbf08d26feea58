package backtest

import (
	"bytes"
	"math"
	"strconv"
	"time"
)

// EquityPoint represents the bankroll after one settled race
type EquityPoint struct {
	Time       time.Time `json:"time"`
	RaceID     string    `json:"race_id"`
	Value      float64   `json:"value"`
	Drawdown   float64   `json:"drawdown"`
	RaceProfit float64   `json:"race_profit"`
}

// EquityCurve represents a time-series of equity points
type EquityCurve []EquityPoint

// GetReturns calculates per-race returns, starting from the initial bankroll
func (e EquityCurve) GetReturns(initial float64) []float64 {
	if len(e) == 0 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e))
	prev := initial
	for _, point := range e {
		if prev == 0 {
			returns = append(returns, 0)
		} else {
			returns = append(returns, (point.Value-prev)/prev)
		}
		prev = point.Value
	}
	return returns
}

// GetVolatility calculates standard deviation of per-race returns
func (e EquityCurve) GetVolatility(initial float64) float64 {
	return stddev(e.GetReturns(initial))
}

// GetDownsideDeviation calculates downside deviation of returns
func (e EquityCurve) GetDownsideDeviation(initial float64) float64 {
	returns := e.GetReturns(initial)
	variance := 0.0
	count := 0
	for _, r := range returns {
		if r < 0 {
			variance += r * r
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(variance / float64(count))
}

// Bounds returns the lowest and highest bankroll on the curve
func (e EquityCurve) Bounds() (float64, float64) {
	if len(e) == 0 {
		return 0, 0
	}
	lo, hi := e[0].Value, e[0].Value
	for _, p := range e[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return lo, hi
}

// ToCSV exports equity curve to CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("time,race_id,bankroll,drawdown,race_profit\n")
	for _, point := range e {
		buf.WriteString(point.Time.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(point.RaceID)
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.RaceProfit))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
