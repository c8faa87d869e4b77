package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS activations (
	activation_id TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	ts_unix_ms    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activations_name ON activations(name);

CREATE TABLE IF NOT EXISTS usage_counts (
	name  TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);
`

// Store is the SQLite-backed usage store. Writes are serialized; Count is
// served from an in-memory map that is updated write-through, so an
// in-flight search may observe a count that is one activation behind.
type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	counts map[string]uint32

	closeOnce sync.Once
	closeErr  error
}

// Entry is a (name, count) pair as returned by Top.
type Entry struct {
	Name  string
	Count uint32
}

// Open opens (creating if necessary) the usage database at dbPath and
// loads the aggregate counts into memory.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create usage db directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	// SQLite handles concurrency better with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply usage schema: %w", err)
	}

	s := &Store{db: db, counts: make(map[string]uint32)}
	if err := s.loadCounts(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) loadCounts(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, count FROM usage_counts`)
	if err != nil {
		return fmt.Errorf("load usage counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count uint32
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("scan usage count: %w", err)
		}
		s.counts[name] = count
	}
	return rows.Err()
}

// Count implements Reader. It never blocks on the database.
func (s *Store) Count(name string) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[name]
}

// Record logs one activation of the named entry and bumps its aggregate
// count. Writes are serialized by the single database connection.
func (s *Store) Record(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin usage tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activations (activation_id, name, ts_unix_ms) VALUES (?, ?, ?)`,
		uuid.NewString(), name, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert activation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_counts (name, count) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET count = count + 1`, name)
	if err != nil {
		return fmt.Errorf("bump usage count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit usage tx: %w", err)
	}

	s.mu.Lock()
	s.counts[name]++
	s.mu.Unlock()
	return nil
}

// Top returns the n most-activated entries, highest count first, names
// breaking ties for determinism.
func (s *Store) Top(n int) []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.counts))
	for name, count := range s.counts {
		entries = append(entries, Entry{Name: name, Count: count})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Close closes the database. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
