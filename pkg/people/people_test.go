package people

import (
	"context"
	"path/filepath"
	"testing"

	"bank-ledger/pkg/model"
	"bank-ledger/pkg/store"
	"bank-ledger/pkg/store/jsonfile"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := jsonfile.Open[model.Person](jsonfile.Config{
		Entity: "person",
		Path:   filepath.Join(t.TempDir(), "people.json"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewService(s, nil)
}

func TestCreateInitializesAccounts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Person{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("created person has empty id")
	}
	if created.Accounts == nil {
		t.Error("accounts not initialized to empty list")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Person{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, func(p model.Person) model.Person {
		p.Name = "Robert"
		return p
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Robert" {
		t.Errorf("name = %q, want Robert", updated.Name)
	}
	if updated.Email != "bob@example.com" {
		t.Errorf("merge lost email: %q", updated.Email)
	}
}

func TestGetUnknownPerson(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	if !store.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err.Error() != "person not found" {
		t.Errorf("message = %q, want %q", err.Error(), "person not found")
	}
}

func TestDeleteReturnsID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Person{Name: "Carol"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id != created.ID {
		t.Errorf("deleted id = %q, want %q", id, created.ID)
	}

	if _, err := svc.Get(ctx, created.ID); !store.IsNotFound(err) {
		t.Errorf("get after delete: err = %v, want not found", err)
	}
}
