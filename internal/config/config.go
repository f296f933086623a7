package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the root configuration for journal, stored in ~/.journal/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// DataDir is the root of the file backend: <data_dir>/<user>/journal/<YYYY-MM>/.
	DataDir string `json:"data_dir"`
	// Backend selects the entry store: "files" or "sqlite".
	Backend string `json:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `json:"sqlite_path"`
	// DigestBudget is the maximum size of an injected digest, in characters.
	DigestBudget int          `json:"digest_budget"`
	Server       ServerConfig `json:"server"`
	Client       ClientConfig `json:"client"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
	// Tokens maps bearer tokens to usernames.
	Tokens map[string]string `json:"tokens"`
	// TrustUserHeader accepts the X-Journal-User header set by an
	// authenticating proxy in front of the server.
	TrustUserHeader bool `json:"trust_user_header"`
}

// ClientConfig holds settings for talking to a remote journal server.
type ClientConfig struct {
	// URL of the server. Empty means use the local store.
	URL string `json:"url"`
	// Token is sent as a bearer token.
	Token string `json:"token"`
}

const (
	// DefaultDataDir matches the layout data/<user>/journal used by the host platform.
	DefaultDataDir = "data"
	// DefaultBackend is the file-per-entry store.
	DefaultBackend = "files"
	// DefaultAddr is the HTTP listen address.
	DefaultAddr = ":8080"
	// DefaultDigestBudget is about 30 printed pages.
	DefaultDigestBudget = 60000
)

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		DataDir:      DefaultDataDir,
		Backend:      DefaultBackend,
		SQLitePath:   filepath.Join(DefaultDataDir, "journal.db"),
		DigestBudget: DefaultDigestBudget,
		Server: ServerConfig{
			Addr:   DefaultAddr,
			Tokens: map[string]string{},
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// journal configuration – ~/.journal/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables JOURNAL_DATA_DIR, JOURNAL_BACKEND,
// JOURNAL_ADDR, JOURNAL_SERVER and JOURNAL_TOKEN override these values.
{
  // Root directory for journal files: <data_dir>/<user>/journal/<YYYY-MM>/
  "data_dir": "data",

  // Entry store: "files" (one JSON file per entry) or "sqlite".
  "backend": "files",

  // Database file for the sqlite backend. Empty means <data_dir>/journal.db.
  "sqlite_path": "",

  // Maximum characters of journal text injected into a conversation.
  "digest_budget": 60000,

  // ── HTTP API ─────────────────────────────────────────────────────────────
  "server": {
    "addr": ":8080",

    // Bearer token → username. Requests without a known token are "guest".
    "tokens": {},

    // Accept X-Journal-User from an authenticating reverse proxy.
    "trust_user_header": false
  },

  // ── Remote client (journal --server) ─────────────────────────────────────
  "client": {
    "url": "",
    "token": ""
  }
}
`

// DefaultPath returns $JOURNAL_CONFIG or ~/.journal/config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv("JOURNAL_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".journal", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults on first
// run, and applies environment overrides. Lines starting with // are treated
// as comments and stripped before JSON parsing.
func Load(path string) (Config, error) {
	cfg := Default()
	// Derived from the final data_dir unless set explicitly.
	cfg.SQLitePath = ""

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return applyEnv(cfg), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return applyEnv(Default()), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.DigestBudget <= 0 {
		cfg.DigestBudget = def.DigestBudget
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.Tokens == nil {
		cfg.Server.Tokens = map[string]string{}
	}

	cfg = applyEnv(cfg)
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "journal.db")
	}
	return cfg, nil
}

// applyEnv overrides cfg with JOURNAL_* environment variables.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("JOURNAL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("JOURNAL_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("JOURNAL_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := os.Getenv("JOURNAL_DIGEST_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DigestBudget = n
		}
	}
	if v := os.Getenv("JOURNAL_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("JOURNAL_SERVER"); v != "" {
		cfg.Client.URL = v
	}
	if v := os.Getenv("JOURNAL_TOKEN"); v != "" {
		cfg.Client.Token = v
	}
	return cfg
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
