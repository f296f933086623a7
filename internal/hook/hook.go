// Package hook appends a user's journal digest to the first message of an
// outbound conversation payload. It never fails the surrounding pipeline:
// every problem degrades to "nothing added".
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Tiliavir/trivial-journal/internal/digest"
	"github.com/Tiliavir/trivial-journal/internal/model"
)

// Registration values for the host's message pipeline.
const (
	Name     = "filter_messages"
	Priority = 5
)

// EntrySource lists a user's entries.
type EntrySource interface {
	List(ctx context.Context, username string) ([]model.Entry, error)
}

// Identity names whose journal to inject. When Entries is non-nil the host
// has already attached them and the source is not consulted.
type Identity struct {
	Username string
	Entries  []model.Entry
}

// Injector is the message-pipeline hook.
type Injector struct {
	Source  EntrySource
	Builder *digest.Builder
	Logger  *slog.Logger
}

// New returns an Injector. A nil builder uses the default budget.
func New(src EntrySource, builder *digest.Builder, logger *slog.Logger) *Injector {
	if builder == nil {
		builder = digest.New(0, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{Source: src, Builder: builder, Logger: logger}
}

// Inject appends the digest to the first message of p and reports whether
// anything was added.
func (in *Injector) Inject(ctx context.Context, p *Payload, id Identity) (added bool) {
	defer in.contain(&added)

	if p == nil || len(p.Messages) == 0 {
		in.logger().Warn("no messages found in payload for adding journal entries")
		return false
	}
	text := in.digestFor(ctx, id)
	if text == "" {
		return false
	}

	first := &p.Messages[0]
	content, ok := appendText(first.Content, text)
	if !ok {
		kind := "missing"
		if first.Content != nil {
			kind = first.Content.kind()
		}
		in.logger().Warn("unexpected message content format", "content", kind)
		return false
	}
	first.Content = content
	return true
}

// InjectJSON runs Inject over an encoded payload. On any failure, or when
// nothing was added, raw is returned unchanged.
func (in *Injector) InjectJSON(ctx context.Context, raw []byte, id Identity) (out []byte, added bool) {
	out = raw
	defer in.contain(&added)

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		in.logger().Error("error in journal hook", "err", err)
		return raw, false
	}
	if !in.Inject(ctx, &p, id) {
		return raw, false
	}
	encoded, err := json.Marshal(p)
	if err != nil {
		in.logger().Error("error in journal hook", "err", err)
		return raw, false
	}
	return encoded, true
}

// InjectAnthropic appends the digest as a new text block of the first
// message in msgs.
func (in *Injector) InjectAnthropic(ctx context.Context, msgs []anthropic.MessageParam, id Identity) (added bool) {
	defer in.contain(&added)

	if len(msgs) == 0 {
		in.logger().Warn("no messages found in payload for adding journal entries")
		return false
	}
	text := in.digestFor(ctx, id)
	if text == "" {
		return false
	}
	msgs[0].Content = append(msgs[0].Content, anthropic.NewTextBlock(text))
	return true
}

// digestFor resolves the identity's entries and renders them. Any failure
// yields "".
func (in *Injector) digestFor(ctx context.Context, id Identity) string {
	entries := id.Entries
	if entries == nil {
		if id.Username == "" {
			in.logger().Warn("no username found for journal entries")
			return ""
		}
		if in.Source == nil {
			in.logger().Warn("no journal source configured", "user", id.Username)
			return ""
		}
		var err error
		entries, err = in.Source.List(ctx, id.Username)
		if err != nil {
			in.logger().Error("error in journal hook", "user", id.Username, "err", err)
			return ""
		}
	}
	if len(entries) == 0 {
		in.logger().Info("no journal entries found", "user", id.Username)
		return ""
	}
	builder := in.Builder
	if builder == nil {
		builder = digest.New(0, in.logger())
	}
	return builder.Build(entries)
}

// contain turns a panic into a logged "nothing added".
func (in *Injector) contain(added *bool) {
	if r := recover(); r != nil {
		in.logger().Error("error in journal hook", "err", fmt.Sprint(r))
		*added = false
	}
}

func (in *Injector) logger() *slog.Logger {
	if in == nil || in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}
