package types

import "time"

// Strategy selects how the ledger sizes the next stake.
type Strategy string

const (
	StrategyFlat       Strategy = "flat"
	StrategyPercentage Strategy = "percentage"
	StrategyKelly      Strategy = "kelly"
)

// ParseStrategy maps a stored tag to a Strategy. Unrecognized tags fall
// back to flat rather than failing, so a stale persisted value can never
// wedge the ledger.
func ParseStrategy(s string) Strategy {
	switch Strategy(s) {
	case StrategyFlat, StrategyPercentage, StrategyKelly:
		return Strategy(s)
	}
	return StrategyFlat
}

type TransactionKind string

const (
	KindDeposit       TransactionKind = "deposit"
	KindWithdrawal    TransactionKind = "withdrawal"
	KindBetSettlement TransactionKind = "bet_settlement"
)

type BetResult string

const (
	ResultWin  BetResult = "win"
	ResultLoss BetResult = "loss"
	ResultVoid BetResult = "void"
)

// Transaction is one immutable entry in the bankroll log. Amount is the
// net effect on the bankroll: positive for deposits and winning bets,
// negative for withdrawals and losing bets, zero for voids. Odds and
// Result are set only for bet settlements.
type Transaction struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Kind        TransactionKind `json:"kind"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description,omitempty"`
	Odds        float64         `json:"odds,omitempty"`
	Result      BetResult       `json:"result,omitempty"`
}

// BankrollProfile holds the user's staking configuration and running
// totals. Current always equals Initial plus the sum of all transaction
// amounts in the log.
type BankrollProfile struct {
	Initial         float64  `json:"initial"`
	Current         float64  `json:"current"`
	Strategy        Strategy `json:"strategy"`
	FlatStake       float64  `json:"flat_stake"`
	PercentageStake float64  `json:"percentage_stake"`
}

// Profile defaults applied on first use and after a reset.
const (
	DefaultInitialBankroll = 100.0
	DefaultFlatStake       = 10.0
	DefaultPercentageStake = 5.0
)

func DefaultProfile() BankrollProfile {
	return BankrollProfile{
		Initial:         DefaultInitialBankroll,
		Current:         DefaultInitialBankroll,
		Strategy:        StrategyFlat,
		FlatStake:       DefaultFlatStake,
		PercentageStake: DefaultPercentageStake,
	}
}

// BankrollState is the unit of persistence: the full profile plus the
// complete transaction log in insertion order.
type BankrollState struct {
	Profile      BankrollProfile `json:"profile"`
	Transactions []Transaction   `json:"transactions"`
}

// ValueAssessment is the output of the value-bet calculator. All
// percentage fields are on a 0-100 scale.
type ValueAssessment struct {
	Odds                      float64 `json:"odds"`
	ProbabilityPercent        float64 `json:"probability_percent"`
	ImpliedProbabilityPercent float64 `json:"implied_probability_percent"`
	ValuePercent              float64 `json:"value_percent"`
	ExpectedValuePercent      float64 `json:"expected_value_percent"`
	KellyStakePercent         float64 `json:"kelly_stake_percent"`
	IsValueBet                bool    `json:"is_value_bet"`
}

// BetSlipSelection is one leg of an accumulator. Never persisted.
type BetSlipSelection struct {
	Match  string  `json:"match"`
	Market string  `json:"market"`
	Odds   float64 `json:"odds"`
	League string  `json:"league,omitempty"`
}
