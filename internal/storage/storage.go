package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var (
	// ErrStorage wraps every I/O failure while writing or deleting entries.
	ErrStorage = errors.New("storage error")
	// ErrInvalidName is returned for usernames or ids that cannot be used
	// as a partition or record key.
	ErrInvalidName = errors.New("invalid name")
)

// Backend names accepted by Open.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Store is durable CRUD for a single user's journal entries. Every method
// takes the username explicitly; the store holds no notion of a current user.
//
// Entries are partitioned by the UTC month of their timestamp. Save is an
// upsert within one partition only: saving an existing id with a timestamp in
// another month leaves the old record in place, and Delete removes every
// record with the id across all partitions.
type Store interface {
	List(ctx context.Context, username string) ([]model.Entry, error)
	Save(ctx context.Context, username string, in model.EntryInput) (model.Entry, error)
	Delete(ctx context.Context, username, id string) (bool, error)
}

// Options selects and configures a Store backend.
type Options struct {
	Backend    string // "files" (default) or "sqlite"
	DataDir    string
	SQLitePath string
	Logger     *slog.Logger
}

// Open returns the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFiles:
		return NewFileStore(opts.DataDir, opts.Logger), nil
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// resolveEntry fills in the fields a caller left out. A missing or empty id is
// replaced with a fresh one; a missing timestamp becomes now.
func resolveEntry(in model.EntryInput, now func() int64) model.Entry {
	e := model.Entry{
		Tags: []string{},
	}
	if in.Timestamp != nil {
		e.Timestamp = int64(*in.Timestamp)
	} else {
		e.Timestamp = now()
	}
	if in.ID != nil && *in.ID != "" {
		e.ID = *in.ID
	} else {
		e.ID = timecalc.GenerateID()
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Tags != nil {
		e.Tags = append([]string{}, in.Tags...)
	}
	return e
}

// validateName rejects names that would escape or collapse a directory level.
func validateName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
