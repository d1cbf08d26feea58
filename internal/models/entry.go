package models

import "time"

// HorseEntry represents one predicted runner in one race
type HorseEntry struct {
	Seq            int       `json:"seq"` // position in the source record set
	RaceID         string    `json:"race_id"`
	RaceTime       time.Time `json:"race_time"`
	Horse          string    `json:"horse"`
	Track          string    `json:"track"`
	Class          string    `json:"class"`
	Odds           float64   `json:"odds"`
	RawProbability float64   `json:"raw_probability"`
	Place          *int      `json:"place"`
	PredictedRank  int       `json:"predicted_rank"`
	FieldSize      int       `json:"field_size"`
}

// IsWinner reports whether the runner finished first. A missing place is not a win.
func (h HorseEntry) IsWinner() bool {
	return h.Place != nil && *h.Place == 1
}

// HasResult reports whether a finishing place was recorded
func (h HorseEntry) HasResult() bool {
	return h.Place != nil
}

// RaceGroup holds every entry sharing one race identifier
type RaceGroup struct {
	ID      string       `json:"id"`
	Time    time.Time    `json:"time"`
	Track   string       `json:"track"`
	Class   string       `json:"class"`
	Entries []HorseEntry `json:"entries"`
}

// FieldSize returns the number of runners before any rank filtering
func (g RaceGroup) FieldSize() int {
	return len(g.Entries)
}
