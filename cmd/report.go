package cmd

import (
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show entry counts per month and per tag",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type monthTotal struct {
	Month   string `json:"month"`
	Entries int    `json:"entries"`
	Chars   int    `json:"chars"`
}

type tagTotal struct {
	Tag     string `json:"tag"`
	Entries int    `json:"entries"`
}

type report struct {
	Months  []monthTotal `json:"months"`
	Tags    []tagTotal   `json:"tags"`
	Entries int          `json:"total_entries"`
	Chars   int          `json:"total_chars"`
}

func runReport(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := st.List(cmd.Context(), flagUser)
	if err != nil {
		return err
	}
	r := buildReport(entries)

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "csv":
		fmt.Fprintln(out, "month,entries,chars")
		for _, m := range r.Months {
			fmt.Fprintf(out, "%s,%d,%d\n", m.Month, m.Entries, m.Chars)
		}
	case "json":
		return writeJSON(out, r)
	case "md":
		printReport(out, r)
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", reportFormat)
	}
	return nil
}

// buildReport aggregates entries by UTC month (oldest first) and by tag
// (most used first, then alphabetical). Characters are counted as runes.
func buildReport(entries []model.Entry) report {
	months := map[string]*monthTotal{}
	tags := map[string]int{}
	r := report{Months: []monthTotal{}, Tags: []tagTotal{}}

	for _, e := range entries {
		key := timecalc.MonthKey(e.Timestamp)
		m, ok := months[key]
		if !ok {
			m = &monthTotal{Month: key}
			months[key] = m
		}
		n := utf8.RuneCountInString(e.Content)
		m.Entries++
		m.Chars += n
		r.Entries++
		r.Chars += n
		for _, t := range e.Tags {
			tags[t]++
		}
	}

	for _, m := range months {
		r.Months = append(r.Months, *m)
	}
	sort.Slice(r.Months, func(i, j int) bool { return r.Months[i].Month < r.Months[j].Month })

	for t, n := range tags {
		r.Tags = append(r.Tags, tagTotal{Tag: t, Entries: n})
	}
	sort.Slice(r.Tags, func(i, j int) bool {
		if r.Tags[i].Entries != r.Tags[j].Entries {
			return r.Tags[i].Entries > r.Tags[j].Entries
		}
		return r.Tags[i].Tag < r.Tags[j].Tag
	})
	return r
}

func printReport(w io.Writer, r report) {
	fmt.Fprintln(w, "Month          Entries     Chars")
	fmt.Fprintln(w, "--------------------------------")
	for _, m := range r.Months {
		fmt.Fprintf(w, "%-15s%7d%10d\n", m.Month, m.Entries, m.Chars)
	}
	fmt.Fprintln(w, "--------------------------------")
	fmt.Fprintf(w, "%-15s%7d%10d\n", "Total", r.Entries, r.Chars)

	if len(r.Tags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tags")
	for _, t := range r.Tags {
		fmt.Fprintf(w, "%-20s%d\n", t.Tag, t.Entries)
	}
}
