package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"JOURNAL_DATA_DIR", "JOURNAL_BACKEND", "JOURNAL_SQLITE_PATH", "JOURNAL_DIGEST_BUDGET",
		"JOURNAL_ADDR", "JOURNAL_SERVER", "JOURNAL_TOKEN",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "journal", "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != DefaultDataDir || cfg.Backend != DefaultBackend || cfg.DigestBudget != DefaultDigestBudget {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected template at %s: %v", path, err)
	}

	// The written template must parse back to the defaults.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if again.Server.Addr != DefaultAddr || again.SQLitePath != filepath.Join("data", "journal.db") {
		t.Errorf("template parsed to %+v", again)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `// comment line
{
  // another comment
  "data_dir": "/srv/journal",
  "server": {"tokens": {"secret": "alice"}}
}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/srv/journal" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SQLitePath != filepath.Join("/srv/journal", "journal.db") {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.Server.Tokens["secret"] != "alice" {
		t.Errorf("Tokens = %v", cfg.Server.Tokens)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.DigestBudget != DefaultDigestBudget {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{bad"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Backend != DefaultBackend {
		t.Errorf("expected defaults on error, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOURNAL_DATA_DIR", "/tmp/j")
	t.Setenv("JOURNAL_BACKEND", "sqlite")
	t.Setenv("JOURNAL_DIGEST_BUDGET", "500")
	t.Setenv("JOURNAL_SERVER", "http://localhost:9000")
	t.Setenv("JOURNAL_TOKEN", "tok")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/j" || cfg.Backend != "sqlite" || cfg.DigestBudget != 500 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Client.URL != "http://localhost:9000" || cfg.Client.Token != "tok" {
		t.Errorf("client env not applied: %+v", cfg.Client)
	}
	if cfg.SQLitePath != filepath.Join("/tmp/j", "journal.db") {
		t.Errorf("SQLitePath = %q, want it under JOURNAL_DATA_DIR", cfg.SQLitePath)
	}
}

func TestLoadExplicitSQLitePathWins(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"data_dir": "/srv/journal", "sqlite_path": "/var/db/j.db"}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SQLitePath != "/var/db/j.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
}

func TestStripLineComments(t *testing.T) {
	in := []byte("  // gone\n{\"a\": 1}\n\t// also gone\n")
	got := string(stripLineComments(in))
	want := "{\"a\": 1}\n\n"
	if got != want {
		t.Errorf("stripLineComments = %q, want %q", got, want)
	}
}
