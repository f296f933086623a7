package cmd

import (
	"reflect"
	"testing"

	"github.com/Tiliavir/trivial-journal/internal/model"
)

func TestBuildReport(t *testing.T) {
	const jan = 1704067200000 // 2024-01-01T00:00:00Z
	const feb = 1706745600000 // 2024-02-01T00:00:00Z
	entries := []model.Entry{
		{ID: "c", Timestamp: feb + 1, Content: "héllo", Tags: []string{"work"}},
		{ID: "b", Timestamp: jan + 2, Content: "abc", Tags: []string{"home", "work"}},
		{ID: "a", Timestamp: jan + 1, Content: "", Tags: []string{}},
	}

	r := buildReport(entries)

	wantMonths := []monthTotal{
		{Month: "2024-01", Entries: 2, Chars: 3},
		{Month: "2024-02", Entries: 1, Chars: 5},
	}
	if !reflect.DeepEqual(r.Months, wantMonths) {
		t.Errorf("Months = %+v, want %+v", r.Months, wantMonths)
	}
	wantTags := []tagTotal{{Tag: "work", Entries: 2}, {Tag: "home", Entries: 1}}
	if !reflect.DeepEqual(r.Tags, wantTags) {
		t.Errorf("Tags = %+v, want %+v", r.Tags, wantTags)
	}
	if r.Entries != 3 || r.Chars != 8 {
		t.Errorf("totals = %d entries, %d chars", r.Entries, r.Chars)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	r := buildReport(nil)
	if len(r.Months) != 0 || len(r.Tags) != 0 || r.Entries != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
	if r.Months == nil || r.Tags == nil {
		t.Error("empty report should encode as [] not null")
	}
}
