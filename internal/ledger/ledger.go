package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"betkeeper/internal/interfaces"
	"betkeeper/internal/logger"
	"betkeeper/internal/staking"
	"betkeeper/internal/types"
)

// Ledger is the single writer over the bankroll profile and its
// append-only transaction log. Every mutation updates memory first and
// then saves the complete state through the injected store; a failed
// save is reported wrapped in types.ErrPersistence but the in-memory
// mutation is never rolled back, so reads in the same session stay
// consistent and the next successful save reconciles the durable copy.
type Ledger struct {
	mu      sync.Mutex
	store   interfaces.Store
	seed    types.BankrollProfile
	profile types.BankrollProfile
	txns    []types.Transaction
}

var _ interfaces.Ledger = (*Ledger)(nil)

// New builds a ledger over the given store. The seed profile is used
// on first use, when nothing has been persisted yet; Reset always goes
// back to the documented defaults regardless of the seed.
func New(store interfaces.Store, seed types.BankrollProfile) *Ledger {
	return &Ledger{
		store:   store,
		seed:    seed,
		profile: seed,
	}
}

// Load pulls the persisted state. A missing or unreadable snapshot is
// never fatal: the store defaults corrupt fields individually and a
// failed read falls back to the documented defaults with a warning.
// Current is recomputed from initial plus the surviving log so the
// balance invariant holds even if records were dropped.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load bankroll state, starting from defaults", err)
		l.profile = l.seed
		l.txns = nil
		return nil
	}
	if state == nil {
		logger.Info(ctx, "No persisted bankroll state, starting from defaults")
		l.profile = l.seed
		l.txns = nil
		return nil
	}

	l.profile = state.Profile
	l.txns = state.Transactions
	l.profile.Current = l.profile.Initial + l.sumAmounts()

	logger.Info(ctx, "Bankroll state loaded",
		"initial", l.profile.Initial,
		"current", l.profile.Current,
		"strategy", l.profile.Strategy,
		"transactions", len(l.txns),
	)
	return nil
}

// SetInitialBankroll re-baselines the ledger: initial and current both
// become amount and the whole log is cleared. Destructive by design.
func (l *Ledger) SetInitialBankroll(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: initial bankroll must be positive, got %v", types.ErrInvalidInput, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.profile.Initial = amount
	l.profile.Current = amount
	l.txns = nil

	logger.Info(ctx, "Bankroll re-baselined", "initial", amount)
	return l.persist(ctx)
}

func (l *Ledger) SetStrategy(ctx context.Context, s types.Strategy) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Unrecognized tags degrade to flat rather than erroring.
	l.profile.Strategy = types.ParseStrategy(string(s))
	logger.Info(ctx, "Staking strategy changed", "strategy", l.profile.Strategy)
	return l.persist(ctx)
}

func (l *Ledger) SetFlatStake(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: flat stake must be positive, got %v", types.ErrInvalidInput, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.profile.FlatStake = amount
	return l.persist(ctx)
}

func (l *Ledger) SetPercentageStake(ctx context.Context, pct float64) error {
	if pct <= 0 || pct > 100 {
		return fmt.Errorf("%w: percentage stake must be in (0, 100], got %v", types.ErrInvalidInput, pct)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.profile.PercentageStake = pct
	return l.persist(ctx)
}

func (l *Ledger) Deposit(ctx context.Context, amount float64, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit must be positive, got %v", types.ErrInvalidInput, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.append(ctx, types.Transaction{
		Kind:        types.KindDeposit,
		Amount:      amount,
		Description: description,
	})
	return l.persist(ctx)
}

// Withdraw records a negative-amount transaction. The bankroll may go
// negative; an overdraft is a real cash position, not an error.
func (l *Ledger) Withdraw(ctx context.Context, amount float64, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: withdrawal must be positive, got %v", types.ErrInvalidInput, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.append(ctx, types.Transaction{
		Kind:        types.KindWithdrawal,
		Amount:      -amount,
		Description: description,
	})
	return l.persist(ctx)
}

// SettleBet records the outcome of a settled bet. The transaction
// carries only the net amount, odds and result; the stake itself is not
// kept on the record.
func (l *Ledger) SettleBet(ctx context.Context, stake, odds float64, result types.BetResult, description string) error {
	if stake <= 0 {
		return fmt.Errorf("%w: stake must be positive, got %v", types.ErrInvalidInput, stake)
	}
	if odds < 1.01 {
		return fmt.Errorf("%w: odds must be >= 1.01, got %v", types.ErrInvalidInput, odds)
	}

	var amount float64
	switch result {
	case types.ResultWin:
		amount = stake * (odds - 1)
	case types.ResultLoss:
		amount = -stake
	case types.ResultVoid:
		amount = 0
	default:
		return fmt.Errorf("%w: unknown bet result %q", types.ErrInvalidInput, result)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.append(ctx, types.Transaction{
		Kind:        types.KindBetSettlement,
		Amount:      amount,
		Description: description,
		Odds:        odds,
		Result:      result,
	})
	return l.persist(ctx)
}

// Reset restores the documented defaults and clears the log.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.profile = types.DefaultProfile()
	l.txns = nil

	logger.Info(ctx, "Bankroll reset to defaults")
	return l.persist(ctx)
}

// Profile returns a snapshot of the current profile.
func (l *Ledger) Profile() types.BankrollProfile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile
}

// Transactions returns the log newest-first, the order the app displays
// it in. The underlying log stays in insertion order.
func (l *Ledger) Transactions() []types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.Transaction, len(l.txns))
	for i, tx := range l.txns {
		out[len(l.txns)-1-i] = tx
	}
	return out
}

// Profit and the other derived figures are recomputed on every read so
// they can never drift from the log.
func (l *Ledger) Profit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.Current - l.profile.Initial
}

func (l *Ledger) ProfitPercent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.profile.Initial <= 0 {
		return 0
	}
	return (l.profile.Current - l.profile.Initial) / l.profile.Initial * 100
}

// IsProfit is strict: breaking even does not count.
func (l *Ledger) IsProfit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.Current-l.profile.Initial > 0
}

func (l *Ledger) SuggestedStake() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return staking.SuggestedStake(l.profile)
}

// append stamps and records a transaction and applies its amount to the
// running balance. Caller holds the lock.
func (l *Ledger) append(ctx context.Context, tx types.Transaction) {
	tx.ID = uuid.NewString()
	tx.Timestamp = time.Now().UTC()
	l.txns = append(l.txns, tx)
	l.profile.Current += tx.Amount

	logger.Transaction(ctx, string(tx.Kind), tx.Amount, l.profile.Current, "id", tx.ID)
}

// persist writes the full state through the store. Caller holds the
// lock. The returned error is a warning: memory has already mutated.
func (l *Ledger) persist(ctx context.Context) error {
	state := &types.BankrollState{
		Profile:      l.profile,
		Transactions: l.txns,
	}
	if err := l.store.Save(ctx, state); err != nil {
		logger.ErrorWithErr(ctx, "Bankroll state not persisted, in-memory state kept", err)
		return err
	}
	return nil
}

func (l *Ledger) sumAmounts() float64 {
	var sum float64
	for _, tx := range l.txns {
		sum += tx.Amount
	}
	return sum
}
