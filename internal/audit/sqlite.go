package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores payloads in the transform_raw and transform_out tables.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dsn and migrates it.
func NewSQLite(dsn string) (*SQLite, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the necessary tables
func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transform_raw (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			raw_payload TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transform_out (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			transformed_payload TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transform_raw_request ON transform_raw(request_id);
		CREATE INDEX IF NOT EXISTS idx_transform_out_request ON transform_out(request_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to migrate audit database: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// StoreRaw implements Sink.
func (s *SQLite) StoreRaw(ctx context.Context, requestID string, payload any, status string) error {
	return s.insert(ctx, `INSERT INTO transform_raw (request_id, raw_payload, status, created_at) VALUES (?, ?, ?, ?)`,
		requestID, payload, status)
}

// StoreTransformed implements Sink.
func (s *SQLite) StoreTransformed(ctx context.Context, requestID string, payload any, status string) error {
	return s.insert(ctx,
		`INSERT INTO transform_out (request_id, transformed_payload, status, created_at) VALUES (?, ?, ?, ?)`,
		requestID, payload, status)
}

func (s *SQLite) insert(ctx context.Context, query, requestID string, payload any, status string) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, requestID, data, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store payload for %s: %w", requestID, err)
	}

	return nil
}

// Entries returns every stored payload for requestID, raw entries first.
func (s *SQLite) Entries(ctx context.Context, requestID string) ([]Entry, error) {
	raw, err := s.query(ctx, KindRaw,
		`SELECT request_id, raw_payload, status, created_at FROM transform_raw WHERE request_id = ? ORDER BY id`,
		requestID)
	if err != nil {
		return nil, err
	}

	out, err := s.query(ctx, KindTransformed,
		`SELECT request_id, transformed_payload, status, created_at FROM transform_out WHERE request_id = ? ORDER BY id`,
		requestID)
	if err != nil {
		return nil, err
	}

	return append(raw, out...), nil
}

func (s *SQLite) query(ctx context.Context, kind, query, requestID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		e := Entry{Kind: kind}
		if err := rows.Scan(&e.RequestID, &e.Payload, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
