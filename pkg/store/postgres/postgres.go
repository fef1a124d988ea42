// Package postgres implements the record store contract on PostgreSQL.
// Each collection is one table with an id primary key and the full record
// as a JSONB document, so the observable contract of the jsonfile store is
// preserved (full collection view, synchronous durability before return)
// while writes stay per-key instead of whole-collection.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/store"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Config holds configuration for a postgres store.
type Config struct {
	// Table is the collection table name (e.g. "accounts").
	Table string

	// Entity is the singular entity name used in errors and logs.
	Entity string

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger

	// Metrics is optional; a no-op collector is used when nil.
	Metrics metrics.Collector
}

// Store is a durable keyed collection backed by a PostgreSQL table.
type Store[T store.Record[T]] struct {
	db      *sql.DB
	config  Config
	logger  *logging.Logger
	metrics metrics.Collector
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Open creates the collection table if needed and returns the store.
// Multiple stores may share the same *sql.DB.
func Open[T store.Record[T]](db *sql.DB, config Config) (*Store[T], error) {
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
		db:      db,
		config:  config,
		logger:  config.Logger.Named("store").Named(config.Entity),
		metrics: config.Metrics,
	}

	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
		config.Table,
	)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("create %s table: %w", config.Table, err)
	}

	s.logger.Info("collection table ready", zap.String("table", config.Table))
	return s, nil
}

// Find returns all records in the collection.
func (s *Store[T]) Find(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s`, s.config.Table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.WrapError(err, s.config.Entity, "find")
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, store.WrapError(err, s.config.Entity, "find")
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, store.WrapError(err, s.config.Entity, "find")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapError(err, s.config.Entity, "find")
	}
	return records, nil
}

// FindOne returns the record with the given id.
func (s *Store[T]) FindOne(ctx context.Context, id string) (T, error) {
	var zero T
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, s.config.Table)

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, store.NewNotFound(s.config.Entity, id)
	}
	if err != nil {
		return zero, store.WrapError(err, s.config.Entity, "findOne")
	}

	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return zero, store.WrapError(err, s.config.Entity, "findOne")
	}
	return rec, nil
}

// Create assigns a fresh id, inserts the record, and returns it.
func (s *Store[T]) Create(ctx context.Context, body T) (T, error) {
	start := time.Now()
	var zero T

	id := uuid.NewString()
	rec := body.WithKey(id)

	raw, err := json.Marshal(rec)
	if err != nil {
		return zero, s.persistErr("create", start, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, s.config.Table)
	if _, err := s.db.ExecContext(ctx, query, id, raw); err != nil {
		return zero, s.persistErr("create", start, err)
	}

	s.metrics.RecordOperation(s.config.Entity, "create", true, time.Since(start))
	s.logger.Debug("record created", zap.String("id", id))
	return rec, nil
}

// Update applies merge to the stored record inside a transaction so the
// read-merge-write is atomic against other updates of the same row.
func (s *Store[T]) Update(ctx context.Context, id string, merge func(T) T) (T, error) {
	start := time.Now()
	var zero T

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, s.persistErr("update", start, err)
	}
	defer tx.Rollback()

	sel := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1 FOR UPDATE`, s.config.Table)
	var raw []byte
	err = tx.QueryRowContext(ctx, sel, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.RecordOperation(s.config.Entity, "update", false, time.Since(start))
		return zero, store.NewNotFound(s.config.Entity, id)
	}
	if err != nil {
		return zero, s.persistErr("update", start, err)
	}

	var cur T
	if err := json.Unmarshal(raw, &cur); err != nil {
		return zero, s.persistErr("update", start, err)
	}

	merged := merge(cur).WithKey(id)
	out, err := json.Marshal(merged)
	if err != nil {
		return zero, s.persistErr("update", start, err)
	}

	upd := fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, s.config.Table)
	if _, err := tx.ExecContext(ctx, upd, id, out); err != nil {
		return zero, s.persistErr("update", start, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, s.persistErr("update", start, err)
	}

	s.metrics.RecordOperation(s.config.Entity, "update", true, time.Since(start))
	s.logger.Debug("record updated", zap.String("id", id))
	return merged, nil
}

// Delete removes the record and returns the deleted id.
func (s *Store[T]) Delete(ctx context.Context, id string) (string, error) {
	start := time.Now()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.config.Table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return "", s.persistErr("delete", start, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", s.persistErr("delete", start, err)
	}
	if affected == 0 {
		s.metrics.RecordOperation(s.config.Entity, "delete", false, time.Since(start))
		return "", store.NewNotFound(s.config.Entity, id)
	}

	s.metrics.RecordOperation(s.config.Entity, "delete", true, time.Since(start))
	s.logger.Debug("record deleted", zap.String("id", id))
	return id, nil
}

// persistErr records a failed mutation and wraps the cause as a fatal
// persistence failure.
func (s *Store[T]) persistErr(operation string, start time.Time, err error) error {
	s.metrics.RecordOperation(s.config.Entity, operation, false, time.Since(start))
	return fmt.Errorf("%s %s (%v): %w", operation, s.config.Entity, err, store.ErrPersistence)
}
