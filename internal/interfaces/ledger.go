package interfaces

import (
	"context"

	"betkeeper/internal/types"
)

// Ledger owns the bankroll profile and the append-only transaction log.
// Every mutation persists the full state before returning; a failed
// durable write is reported wrapped in types.ErrPersistence while the
// in-memory mutation stays visible.
type Ledger interface {
	Load(ctx context.Context) error

	SetInitialBankroll(ctx context.Context, amount float64) error
	SetStrategy(ctx context.Context, s types.Strategy) error
	SetFlatStake(ctx context.Context, amount float64) error
	SetPercentageStake(ctx context.Context, pct float64) error

	Deposit(ctx context.Context, amount float64, description string) error
	Withdraw(ctx context.Context, amount float64, description string) error
	SettleBet(ctx context.Context, stake, odds float64, result types.BetResult, description string) error
	Reset(ctx context.Context) error

	Profile() types.BankrollProfile
	Transactions() []types.Transaction
	Profit() float64
	ProfitPercent() float64
	IsProfit() bool
	SuggestedStake() float64
}
