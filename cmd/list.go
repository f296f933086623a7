package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var (
	listFormat string
	listMonth  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, json, yaml")
	listCmd.Flags().StringVar(&listMonth, "month", "", "Only show entries from this month (YYYY-MM)")
}

func runList(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := st.List(cmd.Context(), flagUser)
	if err != nil {
		return err
	}
	entries = filterMonth(entries, listMonth)

	out := cmd.OutOrStdout()
	switch listFormat {
	case "json":
		return writeJSON(out, entries)
	case "yaml":
		return writeYAML(out, entries)
	case "table":
		printList(out, entries)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", listFormat)
	}
}

// filterMonth keeps entries whose UTC month is month; "" keeps everything.
func filterMonth(entries []model.Entry, month string) []model.Entry {
	if month == "" {
		return entries
	}
	kept := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if timecalc.MonthKey(e.Timestamp) == month {
			kept = append(kept, e)
		}
	}
	return kept
}

// printList groups entries by month and prints one line each.
func printList(w io.Writer, entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentMonth string
	for _, e := range entries {
		month := timecalc.MonthKey(e.Timestamp)
		if month != currentMonth {
			fmt.Fprintln(w, month)
			currentMonth = month
		}

		title := e.Title
		if title == "" {
			title = summary(e.Content, 60)
		}
		tags := ""
		if len(e.Tags) > 0 {
			tags = "  [" + strings.Join(e.Tags, ", ") + "]"
		}
		fmt.Fprintf(w, "%s  %s  %s%s\n", e.Time().Format("01-02 15:04"), e.ID, title, tags)
	}
}

// summary returns the first line of s, cut to at most n runes.
func summary(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
