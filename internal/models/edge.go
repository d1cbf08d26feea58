package models

// Edge holds the derived betting edge for a runner
type Edge struct {
	Probability   float64 `json:"normalized_probability"`
	ExpectedValue float64 `json:"expected_value"`
	KellyFraction float64 `json:"kelly_fraction"`
	// KellyDefined is false when odds leave no net payout (odds <= 1)
	KellyDefined bool `json:"kelly_defined"`
}
