// Package store provides database access for the normalized chat archive.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrStoreMissing indicates the normalized database does not exist yet.
// Retrieval callers hit this when they query before running an import.
var ErrStoreMissing = eris.New("normalized store not found (run an import first)")

// Store provides database operations over the normalized archive.
type Store struct {
	db     *sql.DB
	dbPath string
}

const defaultSQLiteParams = "?_journal_mode=WAL&_busy_timeout=5000"

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+defaultSQLiteParams)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// OpenExisting opens the database only if it already exists on disk.
// Retrieval entry points use this so a missing store surfaces as a
// precondition failure before any query runs.
func OpenExisting(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, eris.Wrapf(ErrStoreMissing, "path %s", dbPath)
	}
	return Open(dbPath)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// InitSchema creates all tables if they don't exist.
func (s *Store) InitSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("execute schema.sql: %w", err)
	}
	return nil
}

// Reset drops all archive tables and recreates them empty. An import run
// is a full rebuild, never a partial update.
func (s *Store) Reset() error {
	drops := []string{
		"DROP TABLE IF EXISTS messages",
		"DROP TABLE IF EXISTS thread_members",
		"DROP TABLE IF EXISTS threads",
		"DROP TABLE IF EXISTS contacts",
	}
	for _, stmt := range drops {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return s.InitSchema()
}

// withTx executes fn within a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Stats holds database statistics.
type Stats struct {
	ContactCount int64
	ThreadCount  int64
	MemberCount  int64
	MessageCount int64
	DatabaseSize int64
}

// GetStats returns row counts and the database file size.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM contacts", &stats.ContactCount},
		{"SELECT COUNT(*) FROM threads", &stats.ThreadCount},
		{"SELECT COUNT(*) FROM thread_members", &stats.MemberCount},
		{"SELECT COUNT(*) FROM messages", &stats.MessageCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("get stats %q: %w", q.query, err)
		}
	}
	if info, err := os.Stat(s.dbPath); err == nil {
		stats.DatabaseSize = info.Size()
	}
	return stats, nil
}
