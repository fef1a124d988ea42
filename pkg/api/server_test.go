package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"bank-ledger/pkg/ledger"
	"bank-ledger/pkg/model"
	"bank-ledger/pkg/people"
	"bank-ledger/pkg/store/jsonfile"

	"github.com/shopspring/decimal"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	accounts, err := jsonfile.Open[model.Account](jsonfile.Config{
		Entity: "account",
		Path:   filepath.Join(dir, "accounts.json"),
	})
	if err != nil {
		t.Fatalf("open account store: %v", err)
	}
	transactions, err := jsonfile.Open[model.Transaction](jsonfile.Config{
		Entity: "transaction",
		Path:   filepath.Join(dir, "transactions.json"),
	})
	if err != nil {
		t.Fatalf("open transaction store: %v", err)
	}
	persons, err := jsonfile.Open[model.Person](jsonfile.Config{
		Entity: "person",
		Path:   filepath.Join(dir, "people.json"),
	})
	if err != nil {
		t.Fatalf("open person store: %v", err)
	}

	txLedger := ledger.NewTransactionLedger(transactions, nil, nil)
	accLedger := ledger.NewAccountLedger(accounts, txLedger, ledger.AccountLedgerConfig{})
	peopleSvc := people.NewService(persons, nil)

	srv := NewServer(peopleSvc, accLedger, txLedger, DefaultServerConfig())
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

func createTestAccount(t *testing.T, router http.Handler, owner string, balance string) model.Account {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/accounts/create", map[string]any{
		"owner":       owner,
		"balance":     balance,
		"accountType": "CHECKING",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decodeBody[model.Account](t, rec)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestPersonLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/people/create", map[string]any{
		"name":  "Alice",
		"email": "alice@example.com",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[model.Person](t, rec)
	if created.ID == "" {
		t.Fatal("created person has empty id")
	}

	rec = doJSON(t, router, http.MethodPut, "/people/update/"+created.ID, map[string]any{
		"name": "Alice B",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.Person](t, rec)
	if updated.Name != "Alice B" {
		t.Errorf("name = %q, want %q", updated.Name, "Alice B")
	}
	if updated.Email != "alice@example.com" {
		t.Errorf("partial update lost email: %q", updated.Email)
	}

	rec = doJSON(t, router, http.MethodDelete, "/people/delete/"+created.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/people/list/"+created.ID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestCreatePersonRequiresName(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/people/create", map[string]any{
		"email": "nobody@example.com",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/accounts/create", map[string]any{
		"accountType": "CHECKING",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing owner: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/accounts/create", map[string]any{
		"owner":       "p1",
		"accountType": "OFFSHORE",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad account type: status = %d, want 400", rec.Code)
	}
}

func TestAccountNotFoundMapsTo404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/accounts/list/missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "account not found" {
		t.Errorf("error = %q, want %q", body["error"], "account not found")
	}
}

func TestOwnerGuard(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	deposit := map[string]any{"amount": "10"}

	rec := doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit", deposit, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("no header: status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit", deposit,
		map[string]string{OwnerHeader: "p2"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong owner: status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/accounts/missing/deposit", deposit,
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown account: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit", deposit,
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusOK {
		t.Errorf("matching owner: status = %d, want 200", rec.Code)
	}
}

func TestDepositAndBalance(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	rec := doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit",
		map[string]any{"amount": "20.5"},
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.Account](t, rec)
	if !updated.Balance.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("balance = %s, want 120.5", updated.Balance)
	}

	rec = doJSON(t, router, http.MethodGet, "/accounts/"+account.ID+"/balance", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: status = %d", rec.Code)
	}
	balance := decodeBody[balanceResponse](t, rec)
	if !balance.Balance.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("reported balance = %s, want 120.5", balance.Balance)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	for _, amount := range []string{"0", "-5"} {
		rec := doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit",
			map[string]any{"amount": amount},
			map[string]string{OwnerHeader: "p1"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %s: status = %d, want 400", amount, rec.Code)
		}
	}
}

func TestTransferEndpoint(t *testing.T) {
	router := newTestRouter(t)
	source := createTestAccount(t, router, "p1", "100")
	dest := createTestAccount(t, router, "p2", "50")

	rec := doJSON(t, router, http.MethodPost, "/accounts/"+source.ID+"/transfer",
		map[string]any{"amount": "30", "destinationAccount": dest.ID},
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.Account](t, rec)
	if !updated.Balance.Equal(decimal.RequireFromString("70")) {
		t.Errorf("source balance = %s, want 70", updated.Balance)
	}

	rec = doJSON(t, router, http.MethodGet, "/accounts/list/"+dest.ID, nil, nil)
	destAfter := decodeBody[model.Account](t, rec)
	if !destAfter.Balance.Equal(decimal.RequireFromString("80")) {
		t.Errorf("destination balance = %s, want 80", destAfter.Balance)
	}
}

func TestTransferRequiresDestination(t *testing.T) {
	router := newTestRouter(t)
	source := createTestAccount(t, router, "p1", "100")

	rec := doJSON(t, router, http.MethodPost, "/accounts/"+source.ID+"/transfer",
		map[string]any{"amount": "30"},
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatementEndpoint(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	for _, amount := range []string{"10", "20"} {
		rec := doJSON(t, router, http.MethodPost, "/accounts/"+account.ID+"/deposit",
			map[string]any{"amount": amount},
			map[string]string{OwnerHeader: "p1"})
		if rec.Code != http.StatusOK {
			t.Fatalf("deposit %s: status = %d", amount, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/accounts/"+account.ID+"/statement", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: status = %d", rec.Code)
	}
	statement := decodeBody[[]model.Transaction](t, rec)
	if len(statement) != 2 {
		t.Errorf("statement entries = %d, want 2", len(statement))
	}
	for _, tx := range statement {
		if tx.Status != model.TransactionStatusCompleted {
			t.Errorf("transaction %s status = %s, want COMPLETED", tx.ID, tx.Status)
		}
	}
}

func TestBlockAccountEndpoint(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	rec := doJSON(t, router, http.MethodPut, "/accounts/block/"+account.ID, nil,
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("block: status = %d", rec.Code)
	}
	blocked := decodeBody[model.Account](t, rec)
	if blocked.ActiveFlag != model.ActiveFlagBlocked {
		t.Errorf("activeFlag = %s, want BLOCKED", blocked.ActiveFlag)
	}
}

func TestCreateTransactionForcesPending(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/transactions/create", map[string]any{
		"accounts": []string{"a1"},
		"amount":   "15",
		"type":     "DEPOSIT",
		"status":   "COMPLETED",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	tx := decodeBody[model.Transaction](t, rec)
	if tx.Status != model.TransactionStatusPending {
		t.Errorf("status = %s, want PENDING", tx.Status)
	}
}

func TestCreateTransactionRejectsUnknownType(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/transactions/create", map[string]any{
		"amount": "15",
		"type":   "GIFT",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateAccountPartialBody(t *testing.T) {
	router := newTestRouter(t)
	account := createTestAccount(t, router, "p1", "100")

	rec := doJSON(t, router, http.MethodPut, "/accounts/update/"+account.ID,
		map[string]any{"dailyWithdrawalLimit": "500"},
		map[string]string{OwnerHeader: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.Account](t, rec)
	if !updated.DailyWithdrawalLimit.Equal(decimal.RequireFromString("500")) {
		t.Errorf("dailyWithdrawalLimit = %s, want 500", updated.DailyWithdrawalLimit)
	}
	if !updated.Balance.Equal(decimal.RequireFromString("100")) {
		t.Errorf("partial update touched balance: %s", updated.Balance)
	}
	if updated.Owner != "p1" {
		t.Errorf("partial update touched owner: %q", updated.Owner)
	}
}
