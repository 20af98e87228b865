// Package store provides the SQLite storage layer for family calendar
// events:
// - Standardized events with signature-based deduplication
// - A manual review queue for low-confidence extractions
// - A corrective sweep that merges duplicates created by concurrent inserts
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.parentcal/parentcal.db"

// ListOpts controls pagination and filtering for List operations.
type ListOpts struct {
	Limit  int
	Offset int
	// From/To bound the event start instant when non-zero.
	From time.Time
	To   time.Time
}

// CreateResult reports the outcome of CreateEvent. When Duplicate is
// true, Event is the pre-existing stored event and nothing was inserted.
type CreateResult struct {
	Event     *event.StandardizedEvent
	Duplicate bool
}

// DuplicatePair is a pair of stored events judged to be the same
// real-world event. Keep is the survivor, Drop the redundant copy.
type DuplicatePair struct {
	Keep event.StandardizedEvent
	Drop event.StandardizedEvent
}

// StoreStats holds observability statistics about the store.
type StoreStats struct {
	EventCount     int64
	FamilyCount    int64
	PendingReviews int64
	DBSizeBytes    int64
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the event storage interface.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, ev *event.StandardizedEvent) (*CreateResult, error)
	GetEvent(ctx context.Context, universalID string) (*event.StandardizedEvent, error)
	UpdateEvent(ctx context.Context, ev *event.StandardizedEvent) error
	DeleteEvent(ctx context.Context, universalID string) error
	ListEvents(ctx context.Context, familyID string, opts ListOpts) ([]*event.StandardizedEvent, error)

	// Deduplication
	FindBySignature(ctx context.Context, familyID, signature string) ([]*event.StandardizedEvent, error)
	FindLatentDuplicates(ctx context.Context, familyID string) ([]DuplicatePair, error)
	ResolveLatentDuplicates(ctx context.Context, familyID string) (int, error)

	// Review queue
	EnqueueReview(ctx context.Context, item *ReviewItem) (int64, error)
	GetReview(ctx context.Context, id int64) (*ReviewItem, error)
	ListPendingReviews(ctx context.Context, familyID string, limit int) ([]*ReviewItem, error)
	ResolveReview(ctx context.Context, id int64, status ReviewStatus, resolvedEventID string) error

	// Observability
	Stats(ctx context.Context) (*StoreStats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	// Create parent directory for non-memory databases
	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Enable WAL mode and foreign keys
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate creates all tables if they don't exist. Idempotent.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			universal_id        TEXT UNIQUE NOT NULL,
			signature           TEXT NOT NULL,
			family_id           TEXT NOT NULL,
			title               TEXT NOT NULL,
			summary             TEXT,
			description         TEXT,
			event_type          TEXT NOT NULL,
			location            TEXT,
			start_at            DATETIME NOT NULL,
			end_at              DATETIME NOT NULL,
			time_zone           TEXT,
			event_date          TEXT NOT NULL,
			child_id            TEXT,
			child_name          TEXT,
			attending_parent_id TEXT,
			host_name           TEXT,
			extra_details       TEXT,
			recurrence          TEXT,
			region              TEXT,
			confidence          REAL NOT NULL DEFAULT 0,
			original_text       TEXT,
			created_at          DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_family_signature
			ON events(family_id, signature)`,

		`CREATE INDEX IF NOT EXISTS idx_events_family_start
			ON events(family_id, start_at)`,

		`CREATE TABLE IF NOT EXISTS review_queue (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			family_id         TEXT NOT NULL,
			raw_text          TEXT NOT NULL,
			reason            TEXT NOT NULL,
			confidence        REAL NOT NULL DEFAULT 0,
			candidate         TEXT,
			status            TEXT NOT NULL DEFAULT 'pending',
			resolved_event_id TEXT,
			created_at        DATETIME DEFAULT CURRENT_TIMESTAMP,
			resolved_at       DATETIME
		)`,

		`CREATE INDEX IF NOT EXISTS idx_review_queue_pending
			ON review_queue(family_id, status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Stats returns current database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}

	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM events", &stats.EventCount},
		{"SELECT COUNT(DISTINCT family_id) FROM events", &stats.FamilyCount},
		{"SELECT COUNT(*) FROM review_queue WHERE status = 'pending'", &stats.PendingReviews},
	}

	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("querying stats (%s): %w", q.query, err)
		}
	}

	// DB size only applies to file-based databases
	if s.dbPath != ":memory:" {
		var pageCount, pageSize int64
		s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
		s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DBSizeBytes = pageCount * pageSize
	}

	return stats, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
