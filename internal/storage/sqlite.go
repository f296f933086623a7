package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

// The primary key mirrors the file layout: one record per (user, month, id).
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entries (
		username  TEXT    NOT NULL,
		month     TEXT    NOT NULL,
		id        TEXT    NOT NULL,
		timestamp INTEGER NOT NULL,
		content   TEXT    NOT NULL DEFAULT '',
		tags      TEXT    NOT NULL DEFAULT '[]',
		title     TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (username, month, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_ts
		ON journal_entries (username, timestamp)`,
}

const (
	upsertEntryStatement = `
	INSERT INTO journal_entries (username, month, id, timestamp, content, tags, title)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (username, month, id) DO UPDATE SET
		timestamp = excluded.timestamp,
		content   = excluded.content,
		tags      = excluded.tags,
		title     = excluded.title
	`

	listEntriesStatement = `
	SELECT month, id, timestamp, content, tags, title
	FROM journal_entries
	WHERE username = ?
	ORDER BY timestamp DESC, month, id
	`

	deleteEntryStatement = `
	DELETE FROM journal_entries
	WHERE username = ? AND id = ?
	`
)

// SQLiteStore keeps entries in a single SQLite table. It follows the same
// partition and duplication rules as FileStore.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() int64
}

// OpenSQLite opens (and creates if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers the same way the file layout does.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range append(pragmas, sqliteSchema...) {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing database %s: %w", path, err)
		}
	}

	return &SQLiteStore{
		db:     db,
		logger: loggerOrDefault(logger),
		now:    timecalc.NowMillis,
	}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns the user's entries, newest first. Rows whose tags cannot be
// decoded are logged and skipped.
func (s *SQLiteStore) List(ctx context.Context, username string) ([]model.Entry, error) {
	if err := validateName("username", username); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, listEntriesStatement, username)
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", ErrStorage, err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var (
			month, tags string
			e           model.Entry
		)
		if err := rows.Scan(&month, &e.ID, &e.Timestamp, &e.Content, &tags, &e.Title); err != nil {
			s.logger.Warn("failed to load journal entry", "user", username, "err", err)
			continue
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			s.logger.Warn("failed to load journal entry", "user", username, "month", month, "id", e.ID, "err", err)
			continue
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", ErrStorage, err)
	}
	return entries, nil
}

// Save upserts the entry within its month partition.
func (s *SQLiteStore) Save(ctx context.Context, username string, in model.EntryInput) (model.Entry, error) {
	if err := validateName("username", username); err != nil {
		return model.Entry{}, err
	}
	entry := resolveEntry(in, s.now)
	if err := validateName("id", entry.ID); err != nil {
		return model.Entry{}, err
	}
	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: marshalling tags: %w", ErrStorage, err)
	}
	_, err = s.db.ExecContext(ctx, upsertEntryStatement,
		username,
		timecalc.MonthKey(entry.Timestamp),
		entry.ID,
		entry.Timestamp,
		entry.Content,
		string(tags),
		entry.Title,
	)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: saving entry %s: %w", ErrStorage, entry.ID, err)
	}
	return entry, nil
}

// Delete removes the id from every month partition of the user.
func (s *SQLiteStore) Delete(ctx context.Context, username, id string) (bool, error) {
	if err := validateName("username", username); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, deleteEntryStatement, username, id)
	if err != nil {
		return false, fmt.Errorf("%w: deleting entry %s: %w", ErrStorage, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: deleting entry %s: %w", ErrStorage, id, err)
	}
	return n > 0, nil
}
