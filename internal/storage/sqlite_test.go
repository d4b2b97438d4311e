package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"betkeeper/internal/types"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "betkeeper.db")
	st, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestSQLiteStore(t)

	want := testState()
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil after save")
	}
	if got.Profile != want.Profile {
		t.Errorf("profile = %+v, want %+v", got.Profile, want.Profile)
	}
	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("got %d transactions, want %d", len(got.Transactions), len(want.Transactions))
	}
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.Amount != w.Amount || g.Odds != w.Odds || g.Result != w.Result {
			t.Errorf("transaction %d = %+v, want %+v", i, g, w)
		}
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("transaction %d timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
	}
}

func TestSQLiteLoadEmpty(t *testing.T) {
	st, _ := newTestSQLiteStore(t)
	got, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v on fresh database, want nil", got)
	}
}

func TestSQLiteSaveReplacesLog(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestSQLiteStore(t)

	if err := st.Save(ctx, testState()); err != nil {
		t.Fatal(err)
	}
	// Re-baseline: empty log must replace, not append.
	if err := st.Save(ctx, &types.BankrollState{Profile: types.DefaultProfile()}); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Transactions) != 0 {
		t.Errorf("got %d transactions after empty-log save, want 0", len(got.Transactions))
	}
	if got.Profile != types.DefaultProfile() {
		t.Errorf("profile = %+v, want defaults", got.Profile)
	}
}

func TestSQLiteDefaultsCorruptValues(t *testing.T) {
	ctx := context.Background()
	st, path := newTestSQLiteStore(t)

	if err := st.Save(ctx, testState()); err != nil {
		t.Fatal(err)
	}

	// Vandalize stored values directly.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for key, value := range map[string]string{
		keyFlatStake: "not-a-number",
		keyStrategy:  "martingale",
	} {
		if _, err := db.Exec(`UPDATE profile SET value = ? WHERE key = ?`, value, key); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.Exec(`UPDATE transactions SET kind = 'mystery' WHERE id = 't2'`); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v, corrupt values must not be fatal", err)
	}
	if got.Profile.FlatStake != types.DefaultFlatStake {
		t.Errorf("FlatStake = %v, want default %v", got.Profile.FlatStake, types.DefaultFlatStake)
	}
	if got.Profile.Strategy != types.StrategyFlat {
		t.Errorf("Strategy = %v, want flat fallback", got.Profile.Strategy)
	}
	if got.Profile.Initial != 200 {
		t.Errorf("Initial = %v, want 200 (untouched field kept)", got.Profile.Initial)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "t1" {
		t.Errorf("transactions = %+v, want only the intact record", got.Transactions)
	}
}

func TestSQLiteDepositHasNullSettlementFields(t *testing.T) {
	ctx := context.Background()
	st, path := newTestSQLiteStore(t)

	state := &types.BankrollState{
		Profile: types.DefaultProfile(),
		Transactions: []types.Transaction{
			{ID: "d1", Timestamp: time.Now().UTC(), Kind: types.KindDeposit, Amount: 10},
		},
	}
	if err := st.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var odds sql.NullFloat64
	var result sql.NullString
	if err := db.QueryRow(`SELECT odds, result FROM transactions WHERE id = 'd1'`).Scan(&odds, &result); err != nil {
		t.Fatal(err)
	}
	if odds.Valid || result.Valid {
		t.Errorf("deposit row has settlement fields set: odds=%v result=%v", odds, result)
	}
}
