// Package mcptools exposes the journal to assistant hosts as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Tiliavir/trivial-journal/internal/digest"
	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/storage"
)

// ServerName is announced to MCP clients.
const ServerName = "Journal MCP Server"

// DefaultUser is used when a tool call carries no username.
const DefaultUser = "guest"

// Tools binds the MCP handlers to a store.
type Tools struct {
	Store   storage.Store
	Digest  *digest.Builder
	Logger  *slog.Logger
	Default string // username for calls without one; DefaultUser when empty
}

// NewServer creates an MCP server with every journal tool registered.
func NewServer(version string, t *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)
	t.Register(s)
	return s
}

// Serve runs the stdio event loop until stdin closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Register adds the journal tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	RegisterListEntriesTool(s, t)
	RegisterSaveEntryTool(s, t)
	RegisterDeleteEntryTool(s, t)
	RegisterDigestTool(s, t)
}

func usernameArg() mcp.ToolOption {
	return mcp.WithString("username", mcp.Description("Journal owner. Defaults to the server's configured user."))
}

// RegisterListEntriesTool registers list_journal_entries.
func RegisterListEntriesTool(s *server.MCPServer, t *Tools) {
	tool := mcp.NewTool("list_journal_entries",
		mcp.WithDescription("Lists the user's journal entries, newest first."),
		usernameArg(),
	)
	s.AddTool(tool, t.handleList)
}

// RegisterSaveEntryTool registers save_journal_entry.
func RegisterSaveEntryTool(s *server.MCPServer, t *Tools) {
	tool := mcp.NewTool("save_journal_entry",
		mcp.WithDescription("Creates or updates a journal entry. Omit id to create a new one."),
		usernameArg(),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry text.")),
		mcp.WithString("id", mcp.Description("Id of the entry to overwrite.")),
		mcp.WithString("title", mcp.Description("Optional title.")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated list of tags.")),
		mcp.WithNumber("timestamp", mcp.Description("Milliseconds since epoch (UTC). Defaults to now.")),
	)
	s.AddTool(tool, t.handleSave)
}

// RegisterDeleteEntryTool registers delete_journal_entry.
func RegisterDeleteEntryTool(s *server.MCPServer, t *Tools) {
	tool := mcp.NewTool("delete_journal_entry",
		mcp.WithDescription("Deletes a journal entry by id."),
		usernameArg(),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry to delete.")),
	)
	s.AddTool(tool, t.handleDelete)
}

// RegisterDigestTool registers journal_digest.
func RegisterDigestTool(s *server.MCPServer, t *Tools) {
	tool := mcp.NewTool("journal_digest",
		mcp.WithDescription("Returns the user's journal as one bounded text block, oldest entries first."),
		usernameArg(),
	)
	s.AddTool(tool, t.handleDigest)
}

func (t *Tools) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := t.user(request)
	entries, err := t.Store.List(ctx, user)
	if err != nil {
		return t.toolError(err, "Failed to list journal entries", user), nil
	}
	return jsonResult(entries)
}

func (t *Tools) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := t.user(request)
	content, ok := request.Params.Arguments["content"].(string)
	if !ok {
		return mcp.NewToolResultError("'content' parameter is required and must be a string."), nil
	}

	in := model.EntryInput{Content: &content}
	if id, _ := request.Params.Arguments["id"].(string); id != "" {
		in.ID = &id
	}
	if title, ok := request.Params.Arguments["title"].(string); ok {
		in.Title = &title
	}
	if tagsStr, _ := request.Params.Arguments["tags"].(string); tagsStr != "" {
		in.Tags = splitTags(tagsStr)
	}
	if raw, ok := request.Params.Arguments["timestamp"]; ok && raw != nil {
		ms, err := millisArg(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.Timestamp = &ms
	}

	entry, err := t.Store.Save(ctx, user, in)
	if err != nil {
		return t.toolError(err, "Failed to save journal entry", user), nil
	}
	return jsonResult(entry)
}

func (t *Tools) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := t.user(request)
	id, ok := request.Params.Arguments["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
	}
	deleted, err := t.Store.Delete(ctx, user, id)
	if err != nil {
		return t.toolError(err, "Failed to delete journal entry", user), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("Entry '%s' not found.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Entry '%s' deleted.", id)), nil
}

func (t *Tools) handleDigest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := t.user(request)
	entries, err := t.Store.List(ctx, user)
	if err != nil {
		return t.toolError(err, "Failed to build journal digest", user), nil
	}
	builder := t.Digest
	if builder == nil {
		builder = digest.New(0, t.logger())
	}
	return mcp.NewToolResultText(builder.Build(entries)), nil
}

func (t *Tools) user(request mcp.CallToolRequest) string {
	if u, _ := request.Params.Arguments["username"].(string); strings.TrimSpace(u) != "" {
		return strings.TrimSpace(u)
	}
	if t.Default != "" {
		return t.Default
	}
	return DefaultUser
}

// toolError reports err to the model. Storage failures are logged and
// summarised; invalid names are the caller's mistake and shown verbatim.
func (t *Tools) toolError(err error, msg, user string) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrInvalidName) {
		return mcp.NewToolResultError(err.Error())
	}
	t.logger().Error(msg, "user", user, "err", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func (t *Tools) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// millisArg accepts JSON numbers (decoded as float64) and numeric strings.
func millisArg(v any) (model.Millis, error) {
	switch n := v.(type) {
	case float64:
		return model.Millis(int64(n)), nil
	case int64:
		return model.Millis(n), nil
	case int:
		return model.Millis(int64(n)), nil
	case string:
		ms, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("'timestamp' must be milliseconds since epoch, got %q", n)
		}
		return model.Millis(ms), nil
	default:
		return 0, fmt.Errorf("'timestamp' must be a number, got %T", v)
	}
}
