package interfaces

import (
	"context"

	"betkeeper/internal/types"
)

// Store is the durable home of a bankroll state snapshot. Save writes
// the complete profile plus log; Load returns nil state (no error) when
// nothing has been persisted yet. Implementations must tolerate partial
// corruption by defaulting individual fields rather than failing the
// whole load.
type Store interface {
	Load(ctx context.Context) (*types.BankrollState, error)
	Save(ctx context.Context, state *types.BankrollState) error
	Close() error
}
