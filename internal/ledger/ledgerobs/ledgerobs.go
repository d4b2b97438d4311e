package ledgerobs

import (
	"context"
	"time"

	"betkeeper/internal/interfaces"
	"betkeeper/internal/logger"
	"betkeeper/internal/trace"
	"betkeeper/internal/types"
)

// observableLedger wraps a Ledger with spans and timing logs around
// every mutation. Reads pass through untouched.
type observableLedger struct {
	ledger interfaces.Ledger
}

var _ interfaces.Ledger = (*observableLedger)(nil)

func Wrap(l interfaces.Ledger) interfaces.Ledger {
	return &observableLedger{ledger: l}
}

func (ol *observableLedger) Load(ctx context.Context) error {
	return ol.traced(ctx, "ledger.Load", func(ctx context.Context) error {
		return ol.ledger.Load(ctx)
	})
}

func (ol *observableLedger) SetInitialBankroll(ctx context.Context, amount float64) error {
	return ol.traced(ctx, "ledger.SetInitialBankroll", func(ctx context.Context) error {
		return ol.ledger.SetInitialBankroll(ctx, amount)
	})
}

func (ol *observableLedger) SetStrategy(ctx context.Context, s types.Strategy) error {
	return ol.traced(ctx, "ledger.SetStrategy", func(ctx context.Context) error {
		return ol.ledger.SetStrategy(ctx, s)
	})
}

func (ol *observableLedger) SetFlatStake(ctx context.Context, amount float64) error {
	return ol.traced(ctx, "ledger.SetFlatStake", func(ctx context.Context) error {
		return ol.ledger.SetFlatStake(ctx, amount)
	})
}

func (ol *observableLedger) SetPercentageStake(ctx context.Context, pct float64) error {
	return ol.traced(ctx, "ledger.SetPercentageStake", func(ctx context.Context) error {
		return ol.ledger.SetPercentageStake(ctx, pct)
	})
}

func (ol *observableLedger) Deposit(ctx context.Context, amount float64, description string) error {
	return ol.traced(ctx, "ledger.Deposit", func(ctx context.Context) error {
		return ol.ledger.Deposit(ctx, amount, description)
	})
}

func (ol *observableLedger) Withdraw(ctx context.Context, amount float64, description string) error {
	return ol.traced(ctx, "ledger.Withdraw", func(ctx context.Context) error {
		return ol.ledger.Withdraw(ctx, amount, description)
	})
}

func (ol *observableLedger) SettleBet(ctx context.Context, stake, odds float64, result types.BetResult, description string) error {
	return ol.traced(ctx, "ledger.SettleBet", func(ctx context.Context) error {
		return ol.ledger.SettleBet(ctx, stake, odds, result, description)
	})
}

func (ol *observableLedger) Reset(ctx context.Context) error {
	return ol.traced(ctx, "ledger.Reset", func(ctx context.Context) error {
		return ol.ledger.Reset(ctx)
	})
}

func (ol *observableLedger) Profile() types.BankrollProfile { return ol.ledger.Profile() }
func (ol *observableLedger) Transactions() []types.Transaction {
	return ol.ledger.Transactions()
}
func (ol *observableLedger) Profit() float64         { return ol.ledger.Profit() }
func (ol *observableLedger) ProfitPercent() float64  { return ol.ledger.ProfitPercent() }
func (ol *observableLedger) IsProfit() bool          { return ol.ledger.IsProfit() }
func (ol *observableLedger) SuggestedStake() float64 { return ol.ledger.SuggestedStake() }

func (ol *observableLedger) traced(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := trace.StartSpan(ctx, op)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Ledger operation failed", err,
			"operation", op,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	logger.Debug(ctx, "Ledger operation completed",
		"operation", op,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
