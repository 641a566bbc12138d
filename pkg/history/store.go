// Package history persists instruction records so hosts can replay what a
// session did. Backed by SQLite; one store per process.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Record is one instruction/response pair.
type Record struct {
	ID           string        `json:"id"`
	SessionLabel string        `json:"session_label,omitempty"`
	Model        string        `json:"model"`
	Instruction  string        `json:"instruction"`
	Response     string        `json:"response"`
	Duration     time.Duration `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Store is a SQLite-backed history log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS instructions (
			id TEXT PRIMARY KEY,
			session_label TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			instruction TEXT NOT NULL,
			response TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_instructions_created_at
			ON instructions(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	log.Info().Str("path", path).Msg("History store opened")
	return &Store{db: db}, nil
}

// Append stores one record. A missing ID or timestamp is filled in.
func (s *Store) Append(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO instructions (id, session_label, model, instruction, response, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionLabel, rec.Model, rec.Instruction, rec.Response,
		rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// defaults to 20.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_label, model, instruction, response, duration_ms, created_at
		 FROM instructions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.SessionLabel, &rec.Model,
			&rec.Instruction, &rec.Response, &durationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes records older than maxAge and returns how many went.
func (s *Store) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	result, err := s.db.Exec(`DELETE FROM instructions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		log.Debug().Int64("removed", n).Msg("Pruned history records")
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
