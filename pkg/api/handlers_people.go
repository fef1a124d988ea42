package api

import (
	"encoding/json"
	"io"
	"net/http"

	"bank-ledger/pkg/model"

	"github.com/gorilla/mux"
)

// CreatePersonRequest is the body for POST /people/create.
type CreatePersonRequest struct {
	Name      string   `json:"name"`
	Document  string   `json:"document"`
	BirthDate string   `json:"birthDate"`
	Email     string   `json:"email"`
	Accounts  []string `json:"accounts"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationf("invalid request body"))
		return
	}
	if req.Name == "" {
		writeError(w, validationf("name is required"))
		return
	}

	person, err := s.people.Create(r.Context(), model.Person{
		Name:      req.Name,
		Document:  req.Document,
		BirthDate: req.BirthDate,
		Email:     req.Email,
		Accounts:  req.Accounts,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	persons, err := s.people.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := s.people.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(raw) {
		writeError(w, validationf("invalid request body"))
		return
	}

	person, err := s.people.Update(r.Context(), mux.Vars(r)["id"], func(p model.Person) model.Person {
		_ = json.Unmarshal(raw, &p)
		return p
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := s.people.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{ID: id})
}
