package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Entry represents a single journal entry as persisted on disk.
type Entry struct {
	ID        string   `json:"id" yaml:"id"`
	Timestamp int64    `json:"timestamp" yaml:"timestamp"` // milliseconds since epoch, UTC
	Content   string   `json:"content" yaml:"content"`
	Tags      []string `json:"tags" yaml:"tags"`
	Title     string   `json:"title" yaml:"title"`
}

// Time returns the entry timestamp as a UTC time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// EntryInput is a partial entry as submitted by a caller. Nil fields are
// resolved by the store when saving.
type EntryInput struct {
	ID        *string  `json:"id,omitempty"`
	Timestamp *Millis  `json:"timestamp,omitempty"`
	Content   *string  `json:"content,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Title     *string  `json:"title,omitempty"`
}

// Millis is a millisecond timestamp that decodes from a JSON number (any
// fractional part is truncated) or from a numeric string.
type Millis int64

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	if i, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*m = Millis(i)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	*m = Millis(f)
	return nil
}

// StringPtr returns a pointer to s. Handy when building an EntryInput.
func StringPtr(s string) *string { return &s }

// MillisPtr returns a pointer to ms as a Millis.
func MillisPtr(ms int64) *Millis {
	m := Millis(ms)
	return &m
}
