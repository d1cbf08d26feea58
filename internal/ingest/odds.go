package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

// ParseOdds converts a starting-price string to decimal odds. Decimal ("3.5"),
// fractional ("5/2", "5/2F") and "evens" forms are accepted.
func ParseOdds(raw string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimRight(s, "FJC")
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", models.ErrInvalidOdds)
	}
	if s == "EVS" || s == "EVENS" || s == "EVEN" {
		return 2, nil
	}

	var odds decimal.Decimal
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", models.ErrInvalidOdds, raw)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || !d.IsPositive() {
			return 0, fmt.Errorf("%w: %q", models.ErrInvalidOdds, raw)
		}
		odds = decimal.NewFromInt(1).Add(n.Div(d))
	} else {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", models.ErrInvalidOdds, raw)
		}
		odds = d
	}

	if odds.LessThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w: %q is below 1.0", models.ErrInvalidOdds, raw)
	}

	f, _ := odds.Float64()
	return f, nil
}
