package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-journal/internal/digest"
	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/storage"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	return &Tools{Store: storage.NewFileStore(t.TempDir(), nil)}
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestSaveListDeleteTools(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	res, err := tools.handleSave(ctx, call(map[string]any{
		"username":  "alice",
		"id":        "e1",
		"content":   "hello",
		"tags":      "work, ideas ,",
		"timestamp": float64(1700000000000),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var saved model.Entry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &saved))
	assert.Equal(t, "e1", saved.ID)
	assert.Equal(t, int64(1700000000000), saved.Timestamp)
	assert.Equal(t, []string{"work", "ideas"}, saved.Tags)

	res, err = tools.handleList(ctx, call(map[string]any{"username": "alice"}))
	require.NoError(t, err)
	var listed []model.Entry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &listed))
	assert.Equal(t, []model.Entry{saved}, listed)

	res, err = tools.handleDelete(ctx, call(map[string]any{"username": "alice", "id": "e1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = tools.handleDelete(ctx, call(map[string]any{"username": "alice", "id": "e1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestDefaultUser(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	_, err := tools.handleSave(ctx, call(map[string]any{"content": "anon"}))
	require.NoError(t, err)

	entries, err := tools.Store.List(ctx, DefaultUser)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	tools.Default = "carol"
	_, err = tools.handleSave(ctx, call(map[string]any{"content": "mine"}))
	require.NoError(t, err)
	entries, err = tools.Store.List(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSaveValidation(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	res, err := tools.handleSave(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleSave(ctx, call(map[string]any{"content": "x", "timestamp": "soon"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleSave(ctx, call(map[string]any{"content": "x", "username": "../x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleDelete(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDigestTool(t *testing.T) {
	tools := newTools(t)
	tools.Digest = digest.New(0, nil)
	ctx := context.Background()

	res, err := tools.handleDigest(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "", resultText(t, res))

	for _, c := range []struct {
		ts      float64
		content string
	}{{200, "second"}, {100, "first"}} {
		_, err := tools.handleSave(ctx, call(map[string]any{"content": c.content, "timestamp": c.ts}))
		require.NoError(t, err)
	}

	res, err = tools.handleDigest(ctx, call(nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, digest.Header)
	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))
}

func TestMillisArg(t *testing.T) {
	tests := []struct {
		in      any
		want    model.Millis
		wantErr bool
	}{
		{float64(12.9), 12, false},
		{"42", 42, false},
		{7, 7, false},
		{"x", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := millisArg(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer("test", newTools(t))
	require.NotNil(t, s)
}
