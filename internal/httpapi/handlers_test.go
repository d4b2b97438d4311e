package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"betkeeper/internal/ledger"
	"betkeeper/internal/types"
)

type memStore struct {
	state    *types.BankrollState
	failSave bool
}

func (m *memStore) Load(ctx context.Context) (*types.BankrollState, error) { return m.state, nil }
func (m *memStore) Save(ctx context.Context, state *types.BankrollState) error {
	if m.failSave {
		return types.ErrPersistence
	}
	m.state = state
	return nil
}
func (m *memStore) Close() error { return nil }

func newTestHandler() (*Handler, *memStore) {
	st := &memStore{}
	return NewHandler(ledger.New(st, types.DefaultProfile())), st
}

func doJSON(t *testing.T, fn http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) BankrollView {
	t.Helper()
	var v BankrollView
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.HealthCheck, http.MethodGet, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCreateDeposit(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.CreateDeposit, http.MethodPost, `{"amount": 50, "description": "top up"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Profile.Current != 150 {
		t.Errorf("Current = %v, want 150", v.Profile.Current)
	}
	if !v.IsProfit || v.Profit != 50 {
		t.Errorf("profit view = %+v, want profit 50", v)
	}
	if v.PersistWarning != "" {
		t.Errorf("unexpected persist warning: %s", v.PersistWarning)
	}
}

func TestCreateDepositInvalid(t *testing.T) {
	h, _ := newTestHandler()

	w := doJSON(t, h.CreateDeposit, http.MethodPost, `{"amount": -5}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for negative amount, want 400", w.Code)
	}

	w = doJSON(t, h.CreateDeposit, http.MethodPost, `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for bad body, want 400", w.Code)
	}
}

func TestCreateSettlement(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.CreateSettlement, http.MethodPost,
		`{"stake": 10, "odds": 3.0, "result": "win", "description": "outright"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Profile.Current != 120 {
		t.Errorf("Current = %v, want 120 after 10 @ 3.0 win", v.Profile.Current)
	}
}

func TestCreateSettlementUnknownResult(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.CreateSettlement, http.MethodPost, `{"stake": 10, "odds": 3.0, "result": "push"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for unknown result, want 400", w.Code)
	}
}

func TestUpdateStrategy(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.UpdateStrategy, http.MethodPut,
		`{"strategy": "percentage", "percentage_stake": 10}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Profile.Strategy != types.StrategyPercentage {
		t.Errorf("Strategy = %v, want percentage", v.Profile.Strategy)
	}
	if v.SuggestedStake != 10 {
		t.Errorf("SuggestedStake = %v, want 10 (10%% of 100)", v.SuggestedStake)
	}
}

func TestUpdateStrategyRejectsBadPercentage(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.UpdateStrategy, http.MethodPut, `{"percentage_stake": 150}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateInitialAndTransactions(t *testing.T) {
	h, _ := newTestHandler()

	doJSON(t, h.CreateDeposit, http.MethodPost, `{"amount": 50}`)
	w := doJSON(t, h.UpdateInitialBankroll, http.MethodPut, `{"amount": 200}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	v := decodeView(t, w)
	if v.Profile.Initial != 200 || v.Profile.Current != 200 {
		t.Errorf("profile = %+v, want 200/200", v.Profile)
	}

	w = doJSON(t, h.GetTransactions, http.MethodGet, "")
	var resp struct {
		Transactions []types.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Transactions) != 0 {
		t.Errorf("got %d transactions after re-baseline, want 0", len(resp.Transactions))
	}
}

func TestPersistWarningStillMutates(t *testing.T) {
	st := &memStore{failSave: true}
	h := NewHandler(ledger.New(st, types.DefaultProfile()))

	w := doJSON(t, h.CreateDeposit, http.MethodPost, `{"amount": 50}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with warning: %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.PersistWarning == "" {
		t.Error("expected persist_warning in response")
	}
	if v.Profile.Current != 150 {
		t.Errorf("Current = %v, want 150 (memory mutated despite failed save)", v.Profile.Current)
	}
}

func TestAssessValueBet(t *testing.T) {
	h, _ := newTestHandler()
	w := doJSON(t, h.AssessValueBet, http.MethodPost, `{"odds": 2.0, "probability_percent": 60}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var a types.ValueAssessment
	if err := json.NewDecoder(w.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if !a.IsValueBet {
		t.Error("IsValueBet = false for 2.0 @ 60%, want true")
	}

	w = doJSON(t, h.AssessValueBet, http.MethodPost, `{"odds": 1.0, "probability_percent": 60}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for odds below minimum, want 400", w.Code)
	}
}

func TestQuoteBetSlip(t *testing.T) {
	h, _ := newTestHandler()
	body := `{"stake": 10, "selections": [
		{"match": "A v B", "market": "1X2", "odds": 2.0},
		{"match": "C v D", "market": "Over 2.5", "odds": 1.5},
		{"match": "E v F", "market": "BTTS", "odds": 3.0}
	]}`
	w := doJSON(t, h.QuoteBetSlip, http.MethodPost, body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var q struct {
		Selections      int     `json:"selections"`
		CombinedOdds    float64 `json:"combined_odds"`
		PotentialReturn float64 `json:"potential_return"`
		PotentialProfit float64 `json:"potential_profit"`
	}
	if err := json.NewDecoder(w.Body).Decode(&q); err != nil {
		t.Fatal(err)
	}
	if q.Selections != 3 || q.CombinedOdds != 9.0 {
		t.Errorf("quote = %+v, want 3 legs at 9.0", q)
	}
	if q.PotentialReturn != 90.0 || q.PotentialProfit != 80.0 {
		t.Errorf("payout = %+v, want 90/80", q)
	}

	w = doJSON(t, h.QuoteBetSlip, http.MethodPost, `{"stake": -1, "selections": []}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for negative stake, want 400", w.Code)
	}
}
