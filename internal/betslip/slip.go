package betslip

import (
	"fmt"

	"betkeeper/internal/types"
)

// Slip is an in-progress accumulator: an ordered list of selections and
// the combined-price math over them. It lives only as long as the
// owning UI context and is never persisted.
type Slip struct {
	selections []types.BetSlipSelection
}

func New() *Slip {
	return &Slip{}
}

// Add appends a selection. Multiple legs on the same match are allowed;
// real accumulator rules are not policed here.
func (s *Slip) Add(sel types.BetSlipSelection) {
	s.selections = append(s.selections, sel)
}

// Remove drops the selection at the given position.
func (s *Slip) Remove(index int) error {
	if index < 0 || index >= len(s.selections) {
		return fmt.Errorf("%w: selection %d of %d", types.ErrIndexOutOfRange, index, len(s.selections))
	}
	s.selections = append(s.selections[:index], s.selections[index+1:]...)
	return nil
}

func (s *Slip) Len() int {
	return len(s.selections)
}

// Selections returns a copy of the legs in insertion order.
func (s *Slip) Selections() []types.BetSlipSelection {
	out := make([]types.BetSlipSelection, len(s.selections))
	copy(out, s.selections)
	return out
}

// CombinedOdds is the product of all selection odds. An empty slip
// returns 1, the multiplicative identity, not a sentinel.
func (s *Slip) CombinedOdds() float64 {
	combined := 1.0
	for _, sel := range s.selections {
		combined *= sel.Odds
	}
	return combined
}

func (s *Slip) PotentialReturn(stake float64) float64 {
	return stake * s.CombinedOdds()
}

func (s *Slip) PotentialProfit(stake float64) float64 {
	return s.PotentialReturn(stake) - stake
}

// Quote is the accepted figures for a slip at a given stake.
type Quote struct {
	Selections      int     `json:"selections"`
	CombinedOdds    float64 `json:"combined_odds"`
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potential_return"`
	PotentialProfit float64 `json:"potential_profit"`
}

// Place confirms the current combined figures at the given stake. It is
// a pure confirmation boundary: no stake is debited from any bankroll
// and the slip is left untouched.
func (s *Slip) Place(stake float64) Quote {
	return Quote{
		Selections:      len(s.selections),
		CombinedOdds:    s.CombinedOdds(),
		Stake:           stake,
		PotentialReturn: s.PotentialReturn(stake),
		PotentialProfit: s.PotentialProfit(stake),
	}
}

// Clear empties the slip, mirroring the owning UI context being thrown
// away.
func (s *Slip) Clear() {
	s.selections = nil
}
