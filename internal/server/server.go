package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-journal/internal/digest"
	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/storage"
)

// GuestUser is the identity of unauthenticated requests.
const GuestUser = "guest"

// UserHeader carries the username set by a trusted authenticating proxy.
const UserHeader = "X-Journal-User"

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 4 << 20

// Options configures identity resolution and the digest endpoint.
type Options struct {
	// Tokens maps bearer tokens to usernames.
	Tokens map[string]string
	// TrustUserHeader accepts UserHeader when no token matched.
	TrustUserHeader bool
	// DigestBudget bounds GET /journal/digest; <= 0 uses the default.
	DigestBudget int
	Logger       *slog.Logger
}

// Server exposes a Store over HTTP.
type Server struct {
	store   storage.Store
	opts    Options
	digest  *digest.Builder
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

func New(st storage.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  st,
		opts:   opts,
		digest: digest.New(opts.DigestBudget, logger),
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	s.handler = s.logRequests(s.mux)
	return s
}

func (s *Server) Router() http.Handler { return s.handler }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /journal/entries", s.handleListEntries)
	s.mux.HandleFunc("POST /journal/entry", s.handleSaveEntry)
	s.mux.HandleFunc("DELETE /journal/entry/{entry_id}", s.handleDeleteEntry)
	s.mux.HandleFunc("GET /journal/digest", s.handleDigest)
}

// User resolves the username of r: a known bearer token first, then the
// trusted proxy header, then GuestUser.
func (s *Server) User(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if user, ok := s.opts.Tokens[strings.TrimPrefix(auth, "Bearer ")]; ok && user != "" {
			return user
		}
	}
	if s.opts.TrustUserHeader {
		if user := strings.TrimSpace(r.Header.Get(UserHeader)); user != "" {
			return user
		}
	}
	return GuestUser
}

// GET /journal/entries
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	user := s.User(r)
	entries, err := s.store.List(r.Context(), user)
	if err != nil {
		s.fail(w, err, "Failed to list journal entries", "user", user)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /journal/entry
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	user := s.User(r)
	var in model.EntryInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad request: expected JSON {id?,timestamp?,content?,tags?,title?}; "+err.Error())
		return
	}
	entry, err := s.store.Save(r.Context(), user, in)
	if err != nil {
		s.fail(w, err, "Failed to save journal entry", "user", user)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DELETE /journal/entry/{entry_id}
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	user := s.User(r)
	id := r.PathValue("entry_id")
	deleted, err := s.store.Delete(r.Context(), user, id)
	if err != nil {
		s.fail(w, err, "Failed to delete journal entry", "user", user, "id", id)
		return
	}
	if !deleted {
		writeDetail(w, http.StatusNotFound, "Entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /journal/digest
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	user := s.User(r)
	entries, err := s.store.List(r.Context(), user)
	if err != nil {
		s.fail(w, err, "Failed to build journal digest", "user", user)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s.digest.Build(entries))
}

// fail maps a store error to a response. Invalid names are the caller's
// fault; everything else is a storage failure.
func (s *Server) fail(w http.ResponseWriter, err error, detail string, args ...any) {
	if errors.Is(err, storage.ErrInvalidName) {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error(detail, append(args, "err", err)...)
	writeDetail(w, http.StatusInternalServerError, detail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
