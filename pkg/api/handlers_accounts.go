package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bank-ledger/pkg/model"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the body for POST /accounts/create.
type CreateAccountRequest struct {
	Owner                string            `json:"owner"`
	Balance              decimal.Decimal   `json:"balance"`
	DailyWithdrawalLimit decimal.Decimal   `json:"dailyWithdrawalLimit"`
	AccountType          model.AccountType `json:"accountType"`
}

// MovementRequest is the body for deposit and withdraw.
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the body for transfer.
type TransferRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	DestinationAccount string          `json:"destinationAccount"`
}

// balanceResponse is the body for GET /accounts/{id}/balance.
type balanceResponse struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// deletedResponse is the body for delete endpoints.
type deletedResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	if req.Owner == "" {
		writeError(w, validationf("owner is required"))
		return
	}
	switch req.AccountType {
	case model.AccountTypeChecking, model.AccountTypeSavings:
	default:
		writeError(w, validationf("accountType must be CHECKING or SAVINGS"))
		return
	}

	account, err := s.accounts.Create(r.Context(), model.Account{
		Owner:                req.Owner,
		Balance:              model.Round2(req.Balance),
		DailyWithdrawalLimit: model.Round2(req.DailyWithdrawalLimit),
		ActiveFlag:           model.ActiveFlagNone,
		AccountType:          req.AccountType,
		CreatedDate:          time.Now().UTC(),
		Transactions:         []string{},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(raw) {
		writeError(w, validationf("invalid request body"))
		return
	}

	// Partial body: fields present in the JSON overwrite the stored
	// record, everything else is preserved.
	account, err := s.accounts.Update(r.Context(), mux.Vars(r)["id"], func(a model.Account) model.Account {
		_ = json.Unmarshal(raw, &a)
		return a
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleBlockAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Block(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := s.accounts.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{ID: id})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	balance, err := s.accounts.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{ID: id, Balance: balance})
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := s.accounts.GetStatement(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, validationf("amount must be positive"))
		return
	}

	account, err := s.accounts.Deposit(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, validationf("amount must be positive"))
		return
	}

	account, err := s.accounts.Withdraw(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, validationf("amount must be positive"))
		return
	}
	if req.DestinationAccount == "" {
		writeError(w, validationf("destinationAccount is required"))
		return
	}

	account, err := s.accounts.Transfer(r.Context(), mux.Vars(r)["id"], req.Amount, req.DestinationAccount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
