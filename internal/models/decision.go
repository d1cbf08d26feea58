package models

import "strings"

// RejectReason is a set of reasons a runner was not backed
type RejectReason uint8

const (
	RejectKellyLow RejectReason = 1 << iota
	RejectEVLow
	RejectOddsHigh
	RejectOddsLow
	RejectWinRateLow
)

// AllRejectReasons lists every reason in reporting order
var AllRejectReasons = []RejectReason{
	RejectKellyLow,
	RejectEVLow,
	RejectOddsHigh,
	RejectOddsLow,
	RejectWinRateLow,
}

var rejectReasonNames = map[RejectReason]string{
	RejectKellyLow:   "kelly_low",
	RejectEVLow:      "ev_low",
	RejectOddsHigh:   "odds_high",
	RejectOddsLow:    "odds_low",
	RejectWinRateLow: "winrate_low",
}

// Has reports whether every bit of flag is set
func (r RejectReason) Has(flag RejectReason) bool {
	return r&flag == flag && flag != 0
}

// Empty reports whether no reason is set
func (r RejectReason) Empty() bool {
	return r == 0
}

// Reasons expands the set into individual reasons
func (r RejectReason) Reasons() []RejectReason {
	out := make([]RejectReason, 0, len(AllRejectReasons))
	for _, reason := range AllRejectReasons {
		if r.Has(reason) {
			out = append(out, reason)
		}
	}
	return out
}

// String renders the set as pipe-separated tags, e.g. "kelly_low|ev_low"
func (r RejectReason) String() string {
	reasons := r.Reasons()
	names := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		names = append(names, rejectReasonNames[reason])
	}
	return strings.Join(names, "|")
}

// BetDecision is the outcome of filtering, sizing and settling one runner
type BetDecision struct {
	Reasons          RejectReason `json:"reasons"`
	WinRateThreshold float64      `json:"winrate_threshold"`
	Placed           bool         `json:"placed"`
	Stake            float64      `json:"stake"`
	Won              bool         `json:"won"`
	Voided           bool         `json:"voided"`
	Return           float64      `json:"return"`
}

// StakedAmount returns the capital actually at risk. Placeholder stakes on
// non-placed runners and voided bets are never at risk.
func (d BetDecision) StakedAmount() float64 {
	if !d.Placed || d.Voided {
		return 0
	}
	return d.Stake
}

// RMultiple returns the realized return as a multiple of the stake risked
func (d BetDecision) RMultiple() float64 {
	staked := d.StakedAmount()
	if staked <= 0 {
		return 0
	}
	return d.Return / staked
}

// LedgerRow is one enriched runner row of a settled race
type LedgerRow struct {
	Entry         HorseEntry  `json:"entry"`
	Edge          Edge        `json:"edge"`
	Decision      BetDecision `json:"decision"`
	StakePool     float64     `json:"stake_pool"`
	BankrollAfter float64     `json:"bankroll_after"`
	MaxBankroll   float64     `json:"max_bankroll"`
	Drawdown      float64     `json:"drawdown"`
}
