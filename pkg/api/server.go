// Package api exposes the ledger over HTTP. Routing, request validation,
// the owner guard, and error-to-status mapping live here; the ledger
// packages know nothing about HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"bank-ledger/pkg/ledger"
	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/people"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server provides the HTTP surface of the banking ledger.
type Server struct {
	people       *people.Service
	accounts     *ledger.AccountLedger
	transactions *ledger.TransactionLedger
	logger       *logging.Logger
	server       *http.Server
	config       ServerConfig
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Address to listen on (e.g. ":8080")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger
}

// DefaultServerConfig returns a default configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// NewServer creates the HTTP server over the given services.
func NewServer(peopleSvc *people.Service, accounts *ledger.AccountLedger, transactions *ledger.TransactionLedger, config ServerConfig) *Server {
	if config.Logger == nil {
		config.Logger = logging.NewNoOpLogger()
	}

	s := &Server{
		people:       peopleSvc,
		accounts:     accounts,
		transactions: transactions,
		logger:       config.Logger.Named("api"),
		config:       config,
	}

	s.server = &http.Server{
		Addr:         config.Address,
		Handler:      s.Router(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// Router builds the route table. Mutating account routes sit behind the
// owner guard.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(prometheusMiddleware())

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// People
	r.HandleFunc("/people/create", s.handleCreatePerson).Methods(http.MethodPost)
	r.HandleFunc("/people/list", s.handleListPeople).Methods(http.MethodGet)
	r.HandleFunc("/people/list/{id}", s.handleGetPerson).Methods(http.MethodGet)
	r.HandleFunc("/people/update/{id}", s.handleUpdatePerson).Methods(http.MethodPut)
	r.HandleFunc("/people/delete/{id}", s.handleDeletePerson).Methods(http.MethodDelete)

	// Accounts
	r.HandleFunc("/accounts/create", s.handleCreateAccount).Methods(http.MethodPost)
	r.HandleFunc("/accounts/list", s.handleListAccounts).Methods(http.MethodGet)
	r.HandleFunc("/accounts/list/{id}", s.handleGetAccount).Methods(http.MethodGet)
	r.HandleFunc("/accounts/update/{id}", s.requireOwner(s.handleUpdateAccount)).Methods(http.MethodPut)
	r.HandleFunc("/accounts/block/{id}", s.requireOwner(s.handleBlockAccount)).Methods(http.MethodPut)
	r.HandleFunc("/accounts/delete/{id}", s.requireOwner(s.handleDeleteAccount)).Methods(http.MethodDelete)
	r.HandleFunc("/accounts/{id}/balance", s.handleGetBalance).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id}/statement", s.handleGetStatement).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id}/deposit", s.requireOwner(s.handleDeposit)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id}/withdraw", s.requireOwner(s.handleWithdraw)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id}/transfer", s.requireOwner(s.handleTransfer)).Methods(http.MethodPost)

	// Transactions
	r.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions/create", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}/update", s.handleUpdateTransaction).Methods(http.MethodPut)
	r.HandleFunc("/transactions/{id}/delete", s.handleDeleteTransaction).Methods(http.MethodDelete)

	return r
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.config.Address))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleHealth returns a simple health check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
