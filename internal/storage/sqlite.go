package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/search"
)

const currentSchemaVersion = 2

// candidateLimit bounds how many prefiltered rows are handed to the ranker.
const candidateLimit = 500

// The fold SQL function lowercases text the way model.HistoryEntry.Matches
// does. SQLite's own lower() and LIKE only fold ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// SQLiteStorage holds browsing history and the session key/value table
// in a single SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the history schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			visit_count INTEGER NOT NULL DEFAULT 1,
			last_visit INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_last_visit ON history(last_visit);
		CREATE INDEX IF NOT EXISTS idx_history_visit_count ON history(visit_count);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the session key/value table.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// RecordVisit adds a visit to url, creating the entry on first visit.
// An empty title keeps the previously stored one.
func (s *SQLiteStorage) RecordVisit(ctx context.Context, url, title string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, url, title, visit_count, last_visit)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(url) DO UPDATE SET
			visit_count = history.visit_count + 1,
			last_visit = MAX(history.last_visit, excluded.last_visit),
			title = CASE WHEN excluded.title <> '' THEN excluded.title ELSE history.title END
	`, model.GenerateUUID(), url, title, at.UnixMilli())
	return err
}

// Import inserts entries whose URL is not yet known.
// Uses a transaction for atomicity - all or nothing.
// Returns how many were added and how many were skipped as duplicates.
func (s *SQLiteStorage) Import(ctx context.Context, entries []model.HistoryEntry) (added, skipped int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (id, url, title, visit_count, last_visit)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`)
	if err != nil {
		return 0, 0, err
	}
	defer stmt.Close()

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = model.GenerateUUID()
		}
		visits := e.VisitCount
		if visits < 1 {
			visits = 1
		}

		res, err := stmt.ExecContext(ctx, id, e.URL, e.Title, visits, e.LastVisitTime.UnixMilli())
		if err != nil {
			return 0, 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
		if n > 0 {
			added++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}

// Search returns up to q.MaxResults entries visited at or after q.StartTime
// whose URL or title contains every query word, most relevant first.
// Words are compared with Unicode case folding, as in MemoryHistory.
func (s *SQLiteStorage) Search(ctx context.Context, q model.Query) ([]model.HistoryEntry, error) {
	var where []string
	var args []any

	if q.Windowed() {
		where = append(where, "last_visit >= ?")
		args = append(args, q.StartTime.UnixMilli())
	}
	for _, w := range model.QueryWords(q.Text) {
		w = strings.ToLower(w)
		where = append(where, "(instr(fold(url), ?) > 0 OR instr(fold(title), ?) > 0)")
		args = append(args, w, w)
	}

	query := "SELECT id, url, title, visit_count, last_visit FROM history"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY visit_count DESC, last_visit DESC LIMIT ?"
	args = append(args, candidateLimit)

	candidates, err := s.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return capResults(search.Rank(candidates, q.Text), q.MaxResults), nil
}

// Recent returns the most recently visited entries.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, url, title, visit_count, last_visit
		FROM history
		ORDER BY last_visit DESC
		LIMIT ?
	`, limit)
}

// Clear removes all history entries.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	return err
}

func (s *SQLiteStorage) queryEntries(ctx context.Context, query string, args ...any) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		var lastVisit int64
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.VisitCount, &lastVisit); err != nil {
			return nil, err
		}
		e.LastVisitTime = time.UnixMilli(lastVisit)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// KV returns the session key/value table as a Storage.
func (s *SQLiteStorage) KV() Storage {
	return kvTable{db: s.db}
}

// kvTable implements Storage on the kv table.
type kvTable struct {
	db *sql.DB
}

func (t kvTable) Get(key string) (string, bool, error) {
	var value string
	err := t.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (t kvTable) Set(key, value string) error {
	_, err := t.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, value)
	return err
}

func (t kvTable) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := t.db.Exec("DELETE FROM kv WHERE key IN ("+placeholders+")", args...)
	return err
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/omnihist/history.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "omnihist", "history.db"), nil
}
