package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

// FileStore keeps one JSON file per entry under
// <base>/<username>/journal/<YYYY-MM>/entry_<id>.json.
type FileStore struct {
	base   string
	logger *slog.Logger
	now    func() int64
}

// NewFileStore returns a FileStore rooted at base.
func NewFileStore(base string, logger *slog.Logger) *FileStore {
	return &FileStore{
		base:   base,
		logger: loggerOrDefault(logger),
		now:    timecalc.NowMillis,
	}
}

// journalDir returns the root of a user's journal namespace.
func (s *FileStore) journalDir(username string) string {
	return filepath.Join(s.base, username, "journal")
}

// monthDir returns the partition directory for the given timestamp.
func (s *FileStore) monthDir(username string, ms int64) string {
	return filepath.Join(s.journalDir(username), timecalc.MonthKey(ms))
}

func entryFileName(id string) string {
	return "entry_" + id + ".json"
}

// List returns every parseable entry of the user, newest first. Records that
// cannot be read or decoded are logged and skipped.
func (s *FileStore) List(_ context.Context, username string) ([]model.Entry, error) {
	if err := validateName("username", username); err != nil {
		return nil, err
	}
	root := s.journalDir(username)
	entries := []model.Entry{}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable journal path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to load journal entry", "path", path, "err", err)
			return nil
		}
		var e model.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			s.logger.Warn("failed to load journal entry", "path", path, "err", err)
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrStorage, root, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// Save resolves the entry and atomically writes it into its month partition,
// replacing any file with the same id in that partition.
func (s *FileStore) Save(_ context.Context, username string, in model.EntryInput) (model.Entry, error) {
	if err := validateName("username", username); err != nil {
		return model.Entry{}, err
	}
	entry := resolveEntry(in, s.now)
	if err := validateName("id", entry.ID); err != nil {
		return model.Entry{}, err
	}

	dir := s.monthDir(username, entry.Timestamp)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return model.Entry{}, fmt.Errorf("%w: creating directories: %w", ErrStorage, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: marshalling JSON: %w", ErrStorage, err)
	}

	// Atomic write: write to temp file then rename.
	path := filepath.Join(dir, entryFileName(entry.ID))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return model.Entry{}, fmt.Errorf("%w: writing temp file: %w", ErrStorage, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return model.Entry{}, fmt.Errorf("%w: renaming temp file: %w", ErrStorage, err)
	}
	return entry, nil
}

// Delete removes every record named after id in any of the user's
// partitions. It reports whether anything was removed.
func (s *FileStore) Delete(_ context.Context, username, id string) (bool, error) {
	if err := validateName("username", username); err != nil {
		return false, err
	}
	if validateName("id", id) != nil {
		return false, nil
	}
	root := s.journalDir(username)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	target := entryFileName(id)
	deleted := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Name() != target {
			return nil
		}
		if d.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("%w: deleting entry %s: %w", ErrStorage, id, err)
	}
	return deleted, nil
}
