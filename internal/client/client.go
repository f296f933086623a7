package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/storage"
)

// UserHeader mirrors server.UserHeader; the server only honours it when
// configured to trust an authenticating proxy.
const UserHeader = "X-Journal-User"

// Client talks to a journal HTTP server. It satisfies storage.Store so the
// CLI can use a remote journal transparently.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. A non-empty token is sent
// as a bearer token on every request.
func New(ctx context.Context, baseURL, token string) *Client {
	httpClient := http.DefaultClient
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError is a non-success response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("journal API error %d: %s", e.Status, e.Detail)
}

// Unwrap maps server errors onto the storage sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status >= 500:
		return storage.ErrStorage
	case e.Status == http.StatusBadRequest:
		return storage.ErrInvalidName
	default:
		return nil
	}
}

// List returns the user's entries, newest first.
func (c *Client) List(ctx context.Context, username string) ([]model.Entry, error) {
	var entries []model.Entry
	if err := c.do(ctx, http.MethodGet, "/journal/entries", username, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

// Save upserts an entry and returns it as persisted.
func (c *Client) Save(ctx context.Context, username string, in model.EntryInput) (model.Entry, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return model.Entry{}, fmt.Errorf("encoding entry: %w", err)
	}
	var entry model.Entry
	if err := c.do(ctx, http.MethodPost, "/journal/entry", username, body, &entry); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// Delete removes the entry; it reports false when the server had no such entry.
func (c *Client) Delete(ctx context.Context, username, id string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/journal/entry/"+url.PathEscape(id), username, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Digest fetches the rendered digest for the user.
func (c *Client) Digest(ctx context.Context, username string) (string, error) {
	var buf bytes.Buffer
	if err := c.do(ctx, http.MethodGet, "/journal/digest", username, nil, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// do sends a request and decodes a JSON response into out. A *bytes.Buffer
// out receives the raw body.
func (c *Client) do(ctx context.Context, method, path, username string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set(UserHeader, username)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: journal API request failed: %w", storage.ErrStorage, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &detail) != nil || detail.Detail == "" {
			detail.Detail = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Detail: detail.Detail}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		v.Write(data)
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding journal response: %w", err)
		}
		return nil
	}
}
