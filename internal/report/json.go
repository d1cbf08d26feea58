package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yourusername/race-kelly-sim/internal/backtest"
)

// RunDocument is the JSON run summary
type RunDocument struct {
	Title        string                    `json:"title"`
	StakeMode    string                    `json:"stake_mode"`
	Parameters   backtest.SimulationConfig `json:"parameters"`
	Interrupted  bool                      `json:"interrupted"`
	DurationMS   int64                     `json:"duration_ms"`
	RacesSkipped int                       `json:"races_skipped"`
	Summary      *backtest.Summary         `json:"summary,omitempty"`
	Message      string                    `json:"message,omitempty"`
}

// NewRunDocument builds the JSON summary document for a bundle
func NewRunDocument(b Bundle) RunDocument {
	doc := RunDocument{
		Title:        b.Title,
		StakeMode:    b.Result.Config.StakeMode,
		Parameters:   b.Result.Config,
		Interrupted:  b.Result.Interrupted,
		DurationMS:   b.Result.Duration.Milliseconds(),
		RacesSkipped: len(b.Result.Skipped),
		Summary:      b.Summary,
	}
	if b.Summary == nil {
		doc.Message = emptyRunMessage
	}
	return doc
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	return nil
}
