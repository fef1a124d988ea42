package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bank-ledger/pkg/events"
	"bank-ledger/pkg/model"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

func testEvent() events.TransactionCompleted {
	return events.TransactionCompleted{
		TransactionID: "tx-1",
		Type:          model.TransactionTypeTransfer,
		Accounts:      []string{"a1", "a2"},
		Amount:        decimal.NewFromInt(30),
		OccurredAt:    time.Now().UTC(),
	}
}

func TestPublishPostsEvent(t *testing.T) {
	var mu sync.Mutex
	var got events.TransactionCompleted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		mu.Lock()
		defer mu.Unlock()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPublisher(Config{URL: srv.URL})
	defer p.Close()

	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got.TransactionID != "tx-1" {
		t.Errorf("transaction_id = %q, want tx-1", got.TransactionID)
	}
	if len(got.Accounts) != 2 {
		t.Errorf("accounts = %v, want two entries", got.Accounts)
	}
}

func TestPublishRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPublisher(Config{URL: srv.URL})
	defer p.Close()

	if err := p.Publish(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPublisher(Config{URL: srv.URL})
	defer p.Close()

	for i := 0; i < 5; i++ {
		if err := p.Publish(context.Background(), testEvent()); err == nil {
			t.Fatalf("attempt %d: expected failure", i+1)
		}
	}

	err := p.Publish(context.Background(), testEvent())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("after 5 failures err = %v, want open breaker", err)
	}
}
