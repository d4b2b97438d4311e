package valuebet

import (
	"fmt"
	"math"

	"betkeeper/internal/types"
)

const (
	// MinOdds is the lowest decimal price the calculator accepts.
	MinOdds = 1.01
)

// Assess evaluates a price against a subjective win probability and
// returns the value edge, expected value, and Kelly stake sizing.
//
// Inputs: decimal odds >= 1.01 and a probability in percent on (0, 100].
// Anything else is rejected with types.ErrInvalidInput and no result;
// callers treat that as "not yet computable" and re-prompt.
func Assess(odds, probabilityPercent float64) (*types.ValueAssessment, error) {
	if math.IsNaN(odds) || odds < MinOdds {
		return nil, fmt.Errorf("%w: odds must be >= %.2f, got %v", types.ErrInvalidInput, MinOdds, odds)
	}
	if math.IsNaN(probabilityPercent) || probabilityPercent <= 0 || probabilityPercent > 100 {
		return nil, fmt.Errorf("%w: probability must be in (0, 100], got %v", types.ErrInvalidInput, probabilityPercent)
	}

	p := probabilityPercent / 100.0
	b := odds - 1.0 // net odds per unit staked

	valuePercent := (p*odds - 1.0) * 100.0
	expectedValuePercent := (p*b - (1.0 - p)) * 100.0

	// Kelly fraction: (b*p - q) / b, floored at zero when the edge is
	// negative (never recommend a stake on a -EV bet).
	kellyFraction := (b*p - (1.0 - p)) / b
	kellyStakePercent := math.Max(kellyFraction, 0) * 100.0

	return &types.ValueAssessment{
		Odds:                      odds,
		ProbabilityPercent:        probabilityPercent,
		ImpliedProbabilityPercent: 100.0 / odds,
		ValuePercent:              valuePercent,
		ExpectedValuePercent:      expectedValuePercent,
		KellyStakePercent:         kellyStakePercent,
		IsValueBet:                valuePercent > 0,
	}, nil
}
