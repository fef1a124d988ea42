package api

import (
	"encoding/json"
	"io"
	"net/http"

	"bank-ledger/pkg/model"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the body for POST /transactions/create. The
// record always starts PENDING regardless of any status in the body.
type CreateTransactionRequest struct {
	Accounts []string              `json:"accounts"`
	Amount   decimal.Decimal       `json:"amount"`
	Type     model.TransactionType `json:"type"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	switch req.Type {
	case model.TransactionTypeDeposit, model.TransactionTypeWithdrawal, model.TransactionTypeTransfer:
	default:
		writeError(w, validationf("type must be DEPOSIT, WITHDRAWAL or TRANSFER"))
		return
	}

	tx, err := s.transactions.Create(r.Context(), req.Accounts, req.Amount, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(raw) {
		writeError(w, validationf("invalid request body"))
		return
	}

	tx, err := s.transactions.Update(r.Context(), mux.Vars(r)["id"], func(t model.Transaction) model.Transaction {
		_ = json.Unmarshal(raw, &t)
		return t
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := s.transactions.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{ID: id})
}
