package staking

import "betkeeper/internal/types"

// kellyDefaultFraction is the bankroll fraction used by the kelly
// strategy when no per-bet edge has been estimated. Bet-specific Kelly
// sizing lives in the valuebet package; this is the bankroll-level
// default.
const kellyDefaultFraction = 0.05

// SuggestedStake returns the stake the active strategy recommends for
// the given profile. The flat strategy is deliberately not clamped to
// the current bankroll; warning the user is the caller's job.
// Unrecognized strategies behave as flat.
func SuggestedStake(p types.BankrollProfile) float64 {
	switch p.Strategy {
	case types.StrategyPercentage:
		return p.Current * p.PercentageStake / 100.0
	case types.StrategyKelly:
		return p.Current * kellyDefaultFraction
	default:
		return p.FlatStake
	}
}
