// Package people provides pass-through CRUD for Person records. People
// carry no ledger invariants beyond id uniqueness; accounts reference them
// by id only.
package people

import (
	"context"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/model"
	"bank-ledger/pkg/store"
)

// Service wraps the person record store.
type Service struct {
	store  store.Store[model.Person]
	logger *logging.Logger
}

// NewService creates a people service over the given store. Logger may be
// nil.
func NewService(s store.Store[model.Person], logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Service{
		store:  s,
		logger: logger.Named("people"),
	}
}

// Create stores a new person.
func (s *Service) Create(ctx context.Context, body model.Person) (model.Person, error) {
	if body.Accounts == nil {
		body.Accounts = []string{}
	}
	return s.store.Create(ctx, body)
}

// List returns all people.
func (s *Service) List(ctx context.Context) ([]model.Person, error) {
	return s.store.Find(ctx)
}

// Get returns the person with the given id.
func (s *Service) Get(ctx context.Context, id string) (model.Person, error) {
	return s.store.FindOne(ctx, id)
}

// Update applies a generic merge to the person.
func (s *Service) Update(ctx context.Context, id string, merge func(model.Person) model.Person) (model.Person, error) {
	return s.store.Update(ctx, id, merge)
}

// Delete removes the person and returns the deleted id.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	return s.store.Delete(ctx, id)
}
