package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"betkeeper/internal/betslip"
	"betkeeper/internal/interfaces"
	"betkeeper/internal/types"
	"betkeeper/internal/valuebet"
)

// Handler exposes the ledger and calculators over HTTP for the mobile
// app. The ledger is the only stateful dependency; the calculators are
// pure and invoked per request.
type Handler struct {
	ledger interfaces.Ledger
}

func NewHandler(ledger interfaces.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// BankrollView is the profile plus every derived figure the app shows.
type BankrollView struct {
	Profile        types.BankrollProfile `json:"profile"`
	Profit         float64               `json:"profit"`
	ProfitPercent  float64               `json:"profit_percent"`
	IsProfit       bool                  `json:"is_profit"`
	SuggestedStake float64               `json:"suggested_stake"`
	PersistWarning string                `json:"persist_warning,omitempty"`
}

// HealthCheck returns service health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "betkeeper",
	})
}

// GetBankroll returns the profile and derived figures.
func (h *Handler) GetBankroll(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view(""))
}

// GetTransactions returns the log newest-first.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": h.ledger.Transactions(),
	})
}

type amountRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// CreateDeposit records a deposit.
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	h.respondMutation(w, h.ledger.Deposit(r.Context(), req.Amount, req.Description))
}

// CreateWithdrawal records a withdrawal. Overdraft is allowed.
func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	h.respondMutation(w, h.ledger.Withdraw(r.Context(), req.Amount, req.Description))
}

type settlementRequest struct {
	Stake       float64 `json:"stake"`
	Odds        float64 `json:"odds"`
	Result      string  `json:"result"`
	Description string  `json:"description"`
}

// CreateSettlement records a settled bet outcome.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	err := h.ledger.SettleBet(r.Context(), req.Stake, req.Odds, types.BetResult(req.Result), req.Description)
	h.respondMutation(w, err)
}

type strategyRequest struct {
	Strategy        *string  `json:"strategy"`
	FlatStake       *float64 `json:"flat_stake"`
	PercentageStake *float64 `json:"percentage_stake"`
}

// UpdateStrategy applies any provided staking settings. Fields are
// applied independently so the settings screen can submit one at a
// time.
func (h *Handler) UpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	ctx := r.Context()
	var persistErr error
	if req.Strategy != nil {
		if err := h.ledger.SetStrategy(ctx, types.Strategy(*req.Strategy)); err != nil {
			persistErr = err
		}
	}
	if req.FlatStake != nil {
		if err := h.ledger.SetFlatStake(ctx, *req.FlatStake); err != nil {
			if errors.Is(err, types.ErrInvalidInput) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			persistErr = err
		}
	}
	if req.PercentageStake != nil {
		if err := h.ledger.SetPercentageStake(ctx, *req.PercentageStake); err != nil {
			if errors.Is(err, types.ErrInvalidInput) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			persistErr = err
		}
	}
	h.respondMutation(w, persistErr)
}

// UpdateInitialBankroll re-baselines the ledger and clears the log.
func (h *Handler) UpdateInitialBankroll(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	h.respondMutation(w, h.ledger.SetInitialBankroll(r.Context(), req.Amount))
}

// ResetBankroll restores defaults and clears the log.
func (h *Handler) ResetBankroll(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, h.ledger.Reset(r.Context()))
}

type valueBetRequest struct {
	Odds               float64 `json:"odds"`
	ProbabilityPercent float64 `json:"probability_percent"`
}

// AssessValueBet runs the value-bet calculator.
func (h *Handler) AssessValueBet(w http.ResponseWriter, r *http.Request) {
	var req valueBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	assessment, err := valuebet.Assess(req.Odds, req.ProbabilityPercent)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, assessment)
}

type slipQuoteRequest struct {
	Selections []types.BetSlipSelection `json:"selections"`
	Stake      float64                  `json:"stake"`
}

// QuoteBetSlip computes combined odds and payout for a list of
// selections. Stateless: the slip itself lives in the app.
func (h *Handler) QuoteBetSlip(w http.ResponseWriter, r *http.Request) {
	var req slipQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Stake < 0 {
		respondError(w, http.StatusBadRequest, "stake cannot be negative")
		return
	}

	slip := betslip.New()
	for _, sel := range req.Selections {
		slip.Add(sel)
	}
	respondJSON(w, http.StatusOK, slip.Place(req.Stake))
}

// respondMutation maps a ledger mutation outcome to a response. Invalid
// input rejects with 400 and no state change; a persistence failure
// still returns the mutated view plus a warning, because the in-memory
// state did change.
func (h *Handler) respondMutation(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, h.view(""))
	case errors.Is(err, types.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrPersistence):
		respondJSON(w, http.StatusOK, h.view(err.Error()))
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) view(persistWarning string) BankrollView {
	return BankrollView{
		Profile:        h.ledger.Profile(),
		Profit:         h.ledger.Profit(),
		ProfitPercent:  h.ledger.ProfitPercent(),
		IsProfit:       h.ledger.IsProfit(),
		SuggestedStake: h.ledger.SuggestedStake(),
		PersistWarning: persistWarning,
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
