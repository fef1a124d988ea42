// Package jsonfile implements the record store contract on a single JSON
// file per collection. The whole collection is loaded into memory on open
// and rewritten to disk on every mutation, so the in-memory view and the
// durable file never diverge by more than one failed write.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds configuration for a jsonfile store.
type Config struct {
	// Entity is the singular entity name used in errors and logs
	// (e.g. "account", "transaction", "person").
	Entity string

	// Path is the location of the collection file. The file is created on
	// the first mutation if it does not exist.
	Path string

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger

	// Metrics is optional; a no-op collector is used when nil.
	Metrics metrics.Collector
}

// Store is a durable keyed collection backed by one JSON file. The file
// holds a single object mapping record id to full record. Writes go to a
// temp file first and are renamed into place, so a crash mid-write cannot
// corrupt the previous snapshot.
type Store[T store.Record[T]] struct {
	mu      sync.RWMutex
	config  Config
	data    map[string]T
	logger  *logging.Logger
	metrics metrics.Collector
}

// Open loads the collection at config.Path into memory and returns the
// store. A missing file starts an empty collection; a malformed file is an
// error.
func Open[T store.Record[T]](config Config) (*Store[T], error) {
	if config.Entity == "" {
		config.Entity = "record"
	}
	if config.Logger == nil {
		config.Logger = logging.NewNoOpLogger()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}

	s := &Store[T]{
		config:  config,
		data:    make(map[string]T),
		logger:  config.Logger.Named("store").Named(config.Entity),
		metrics: config.Metrics,
	}

	raw, err := os.ReadFile(config.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s collection: %w", config.Entity, err)
		}
		s.logger.Info("collection file absent, starting empty",
			zap.String("path", config.Path))
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode %s collection: %w", config.Entity, err)
	}

	s.logger.Info("collection loaded",
		zap.String("path", config.Path),
		zap.Int("records", len(s.data)))

	return s, nil
}

// Find returns all records in the collection. Order is not significant.
func (s *Store[T]) Find(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]T, 0, len(s.data))
	for _, rec := range s.data {
		records = append(records, rec)
	}
	return records, nil
}

// FindOne returns the record with the given id.
func (s *Store[T]) FindOne(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		var zero T
		return zero, store.NewNotFound(s.config.Entity, id)
	}
	return rec, nil
}

// Create assigns a fresh id, stores the record, and persists the
// collection before returning.
func (s *Store[T]) Create(ctx context.Context, body T) (T, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	rec := body.WithKey(id)
	s.data[id] = rec

	if err := s.persistLocked(); err != nil {
		s.metrics.RecordOperation(s.config.Entity, "create", false, time.Since(start))
		var zero T
		return zero, err
	}

	s.metrics.RecordOperation(s.config.Entity, "create", true, time.Since(start))
	s.logger.Debug("record created", zap.String("id", id))
	return rec, nil
}

// Update applies merge to the stored record and persists the collection.
// The id of the merged record is forced back to id, so a merge cannot
// re-key a record.
func (s *Store[T]) Update(ctx context.Context, id string, merge func(T) T) (T, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.data[id]
	if !ok {
		s.metrics.RecordOperation(s.config.Entity, "update", false, time.Since(start))
		var zero T
		return zero, store.NewNotFound(s.config.Entity, id)
	}

	merged := merge(cur).WithKey(id)
	s.data[id] = merged

	if err := s.persistLocked(); err != nil {
		s.metrics.RecordOperation(s.config.Entity, "update", false, time.Since(start))
		var zero T
		return zero, err
	}

	s.metrics.RecordOperation(s.config.Entity, "update", true, time.Since(start))
	s.logger.Debug("record updated", zap.String("id", id))
	return merged, nil
}

// Delete removes the record and persists the collection.
func (s *Store[T]) Delete(ctx context.Context, id string) (string, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		s.metrics.RecordOperation(s.config.Entity, "delete", false, time.Since(start))
		return "", store.NewNotFound(s.config.Entity, id)
	}

	delete(s.data, id)

	if err := s.persistLocked(); err != nil {
		s.metrics.RecordOperation(s.config.Entity, "delete", false, time.Since(start))
		return "", err
	}

	s.metrics.RecordOperation(s.config.Entity, "delete", true, time.Since(start))
	s.logger.Debug("record deleted", zap.String("id", id))
	return id, nil
}

// persistLocked rewrites the whole collection file. Callers must hold the
// write lock. The in-memory mutation is not rolled back on failure; a
// persistence failure is fatal for the operation and propagates.
func (s *Store[T]) persistLocked() error {
	start := time.Now()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s collection (%v): %w", s.config.Entity, err, store.ErrPersistence)
	}

	if dir := filepath.Dir(s.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s collection dir (%v): %w", s.config.Entity, err, store.ErrPersistence)
		}
	}

	tmp := s.config.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s collection (%v): %w", s.config.Entity, err, store.ErrPersistence)
	}
	if err := os.Rename(tmp, s.config.Path); err != nil {
		return fmt.Errorf("replace %s collection (%v): %w", s.config.Entity, err, store.ErrPersistence)
	}

	s.metrics.RecordPersist(s.config.Entity, len(s.data), time.Since(start))
	return nil
}
