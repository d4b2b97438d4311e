package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"betkeeper/internal/interfaces"
	"betkeeper/internal/logger"
	"betkeeper/internal/types"
)

// Profile keys as they appear in the profile table.
const (
	keyInitial         = "bankroll.initial"
	keyCurrent         = "bankroll.current"
	keyStrategy        = "bankroll.strategy"
	keyFlatStake       = "bankroll.flatStake"
	keyPercentageStake = "bankroll.percentageStake"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount REAL NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	odds REAL,
	result TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_kind ON transactions(kind);
`

// SQLiteStore persists the bankroll state in a local SQLite database:
// a key/value profile table plus a transactions table. Save rewrites
// both inside a single SQL transaction so the snapshot is all-or-nothing.
type SQLiteStore struct {
	db *sql.DB
}

var _ interfaces.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps reads cheap while a save is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*types.BankrollState, error) {
	values, err := s.loadProfileValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	txns, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	if len(values) == 0 && len(txns) == 0 {
		return nil, nil
	}

	raw := persistedProfile{
		Initial:         parseFloatKey(ctx, values, keyInitial),
		Current:         parseFloatKey(ctx, values, keyCurrent),
		FlatStake:       parseFloatKey(ctx, values, keyFlatStake),
		PercentageStake: parseFloatKey(ctx, values, keyPercentageStake),
	}
	if v, ok := values[keyStrategy]; ok {
		raw.Strategy = &v
	}

	return &types.BankrollState{
		Profile:      sanitizeProfile(ctx, raw),
		Transactions: txns,
	}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state *types.BankrollState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", types.ErrPersistence, err)
	}

	now := time.Now().UTC()
	p := state.Profile
	for key, value := range map[string]string{
		keyInitial:         formatFloat(p.Initial),
		keyCurrent:         formatFloat(p.Current),
		keyStrategy:        string(p.Strategy),
		keyFlatStake:       formatFloat(p.FlatStake),
		keyPercentageStake: formatFloat(p.PercentageStake),
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profile(key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: write %s: %v", types.ErrPersistence, key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: clear log: %v", types.ErrPersistence, err)
	}
	for _, t := range state.Transactions {
		var odds, result any
		if t.Kind == types.KindBetSettlement {
			odds = t.Odds
			result = string(t.Result)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions(id, timestamp, kind, amount, description, odds, result)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Timestamp.UTC().Format(time.RFC3339Nano), string(t.Kind), t.Amount, t.Description, odds, result); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: write transaction %s: %v", types.ErrPersistence, t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", types.ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadProfileValues(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM profile`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]types.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, kind, amount, description, odds, result FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []types.Transaction
	for rows.Next() {
		var (
			t      types.Transaction
			ts     string
			kind   string
			odds   sql.NullFloat64
			result sql.NullString
		)
		if err := rows.Scan(&t.ID, &ts, &kind, &t.Amount, &t.Description, &odds, &result); err != nil {
			logger.Warn(ctx, "Skipping unreadable transaction row", "error", err)
			continue
		}
		t.Kind = types.TransactionKind(kind)
		if !validKind(t.Kind) {
			logger.Warn(ctx, "Skipping transaction with unknown kind", "id", t.ID, "kind", kind)
			continue
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			logger.Warn(ctx, "Transaction has unparsable timestamp, keeping record", "id", t.ID, "timestamp", ts)
		} else {
			t.Timestamp = parsed
		}
		if odds.Valid {
			t.Odds = odds.Float64
		}
		if result.Valid {
			t.Result = types.BetResult(result.String)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func parseFloatKey(ctx context.Context, values map[string]string, key string) *float64 {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn(ctx, "Persisted profile value unparsable, using default", "key", key, "value", raw)
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
