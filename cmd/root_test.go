package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-journal/internal/model"
)

// run executes the root command with args against an isolated config. Flags
// keep their values between runs, so callers pass every flag they rely on.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("JOURNAL_CONFIG", filepath.Join(dir, "config.json"))
	t.Setenv("JOURNAL_DATA_DIR", filepath.Join(dir, "data"))
	for _, k := range []string{"JOURNAL_BACKEND", "JOURNAL_SQLITE_PATH", "JOURNAL_DIGEST_BUDGET", "JOURNAL_SERVER", "JOURNAL_TOKEN"} {
		t.Setenv(k, "")
	}
}

func TestCLISaveListDelete(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "save", "--user", "alice", "--id", "e1", "--content", "first day", "--title", "Hello", "--tags", "a, b", "--timestamp", "2024-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved entry e1 at 2024-03-05 00:00:00 UTC")

	out, err = run(t, "", "list", "--user", "alice", "--format", "json", "--month", "")
	require.NoError(t, err)
	var entries []model.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, model.Entry{ID: "e1", Timestamp: 1709596800000, Content: "first day", Tags: []string{"a", "b"}, Title: "Hello"}, entries[0])

	out, err = run(t, "", "list", "--user", "alice", "--format", "table", "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03\n")
	assert.Contains(t, out, "e1  Hello  [a, b]")

	out, err = run(t, "", "list", "--user", "bob", "--format", "yaml", "--month", "")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = run(t, "", "delete", "--user", "alice", "e1")
	require.NoError(t, err)
	_, err = run(t, "", "delete", "--user", "alice", "e1")
	assert.ErrorContains(t, err, "not found")
}

func TestCLIDigestAndInject(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "save", "--user", "carol", "--id", "d1", "--content", "remember the milk", "--title", "", "--tags", "", "--timestamp", "1000")
	require.NoError(t, err)

	out, err := run(t, "", "digest", "--user", "carol")
	require.NoError(t, err)
	assert.Contains(t, out, "### Journal Entries ###")
	assert.Contains(t, out, "remember the milk")

	payload := `{"messages":[{"role":"user","content":"hi"}],"model":"m"}`
	out, err = run(t, payload, "inject", "--user", "carol", "--entries", "")
	require.NoError(t, err)
	var got struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		Model string `json:"model"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Messages, 1)
	assert.True(t, strings.HasPrefix(got.Messages[0].Content, "hi\n\n# Journal"))
	assert.Contains(t, got.Messages[0].Content, "remember the milk")
	assert.Equal(t, "m", got.Model)
}

func TestCLIReportAndStatus(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "save", "--user", "dave", "--id", "r1", "--content", "abc", "--title", "", "--tags", "work", "--timestamp", "2024-03-05")
	require.NoError(t, err)

	out, err := run(t, "", "report", "--user", "dave", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "month,entries,chars\n2024-03,1,3\n", out)

	_, err = run(t, "", "report", "--user", "dave", "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)

	out, err = run(t, "", "status", "--user", "dave")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, "Digest: 1 of 1 entries")
	assert.Contains(t, out, "/60000 characters")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1700000000000", 1700000000000, false},
		{"2024-03-05", 1709596800000, false},
		{"2024-03-05T01:00:00Z", 1709600400000, false},
		{"yesterday", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseTags(" a, ,b ,"))
	assert.Equal(t, []string{}, parseTags(","))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "first line", summary("first line\nsecond", 60))
	assert.Equal(t, "abcd…", summary("abcdefgh", 5))
}
