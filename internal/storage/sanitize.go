package storage

import (
	"context"
	"encoding/json"
	"math"

	"betkeeper/internal/logger"
	"betkeeper/internal/types"
)

// persistedState mirrors types.BankrollState with every field optional
// so a single corrupt value never discards the rest of the snapshot.
type persistedState struct {
	Profile      persistedProfile  `json:"profile"`
	Transactions []json.RawMessage `json:"transactions"`
}

type persistedProfile struct {
	Initial         *float64 `json:"initial"`
	Current         *float64 `json:"current"`
	Strategy        *string  `json:"strategy"`
	FlatStake       *float64 `json:"flat_stake"`
	PercentageStake *float64 `json:"percentage_stake"`
}

// sanitizeProfile rebuilds a profile from a loosely decoded snapshot,
// falling back to the documented default for each field that is
// missing, non-numeric, or out of range.
func sanitizeProfile(ctx context.Context, raw persistedProfile) types.BankrollProfile {
	p := types.DefaultProfile()

	if v := raw.Initial; v != nil && isFinite(*v) && *v >= 0 {
		p.Initial = *v
		p.Current = *v
	} else if v != nil {
		logger.Warn(ctx, "Persisted initial bankroll invalid, using default", "value", *v)
	}
	if v := raw.Current; v != nil && isFinite(*v) {
		p.Current = *v
	}
	if raw.Strategy != nil {
		p.Strategy = types.ParseStrategy(*raw.Strategy)
	}
	if v := raw.FlatStake; v != nil && isFinite(*v) && *v > 0 {
		p.FlatStake = *v
	} else if v != nil {
		logger.Warn(ctx, "Persisted flat stake invalid, using default", "value", *v)
	}
	if v := raw.PercentageStake; v != nil && isFinite(*v) && *v > 0 && *v <= 100 {
		p.PercentageStake = *v
	} else if v != nil {
		logger.Warn(ctx, "Persisted percentage stake invalid, using default", "value", *v)
	}

	return p
}

// decodeTransactions decodes the persisted log one record at a time,
// dropping records that do not parse instead of losing the whole log.
func decodeTransactions(ctx context.Context, raw []json.RawMessage) []types.Transaction {
	txns := make([]types.Transaction, 0, len(raw))
	for i, r := range raw {
		var tx types.Transaction
		if err := json.Unmarshal(r, &tx); err != nil {
			logger.Warn(ctx, "Skipping unreadable transaction record", "index", i, "error", err)
			continue
		}
		if !validKind(tx.Kind) {
			logger.Warn(ctx, "Skipping transaction with unknown kind", "index", i, "kind", tx.Kind)
			continue
		}
		txns = append(txns, tx)
	}
	return txns
}

func validKind(k types.TransactionKind) bool {
	switch k {
	case types.KindDeposit, types.KindWithdrawal, types.KindBetSettlement:
		return true
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
