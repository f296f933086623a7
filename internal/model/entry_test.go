package model_test

import (
	"encoding/json"
	"testing"

	"github.com/Tiliavir/trivial-journal/internal/model"
)

func TestEntryInputTimestampCoercion(t *testing.T) {
	tests := []struct {
		body string
		want int64
	}{
		{`{"timestamp": 1700000000000}`, 1700000000000},
		{`{"timestamp": 1700000000000.9}`, 1700000000000},
		{`{"timestamp": "1700000000000"}`, 1700000000000},
		{`{"timestamp": "12.5"}`, 12},
		{`{"timestamp": -5}`, -5},
	}
	for _, tt := range tests {
		var in model.EntryInput
		if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.body, err)
			continue
		}
		if in.Timestamp == nil || int64(*in.Timestamp) != tt.want {
			t.Errorf("Unmarshal(%s) timestamp = %v, want %d", tt.body, in.Timestamp, tt.want)
		}
	}
}

func TestEntryInputRejectsBadTimestamp(t *testing.T) {
	for _, body := range []string{
		`{"timestamp": "yesterday"}`,
		`{"timestamp": true}`,
		`{"timestamp": {}}`,
		`{"timestamp": 1e300}`,
		`{"timestamp": -1e300}`,
		`{"timestamp": "99999999999999999999"}`,
		`{"timestamp": 9223372036854775808}`,
	} {
		var in model.EntryInput
		if err := json.Unmarshal([]byte(body), &in); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", body)
		}
	}
}

func TestEntryInputOmittedFields(t *testing.T) {
	var in model.EntryInput
	if err := json.Unmarshal([]byte(`{"content": "hi"}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.ID != nil || in.Timestamp != nil || in.Title != nil || in.Tags != nil {
		t.Errorf("expected only content set, got %+v", in)
	}
	if in.Content == nil || *in.Content != "hi" {
		t.Errorf("content = %v, want hi", in.Content)
	}
}
