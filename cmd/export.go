package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var (
	exportFormat    string
	exportThisMonth bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journal entries to stdout, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml, md")
	exportCmd.Flags().BoolVar(&exportThisMonth, "this-month", false, "Only export entries from the current UTC month")
}

func runExport(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := st.List(cmd.Context(), flagUser)
	if err != nil {
		return err
	}
	if exportThisMonth {
		entries = since(entries, timecalc.StartOfMonth(time.Now()))
	}
	entries = oldestFirst(entries)

	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		return writeJSON(out, entries)
	case "yaml":
		return writeYAML(out, entries)
	case "md":
		printMarkdown(out, entries)
	case "csv":
		printCSV(out, entries)
	default:
		return fmt.Errorf("unknown format %q (want csv, json, yaml or md)", exportFormat)
	}
	return nil
}

func since(entries []model.Entry, from time.Time) []model.Entry {
	kept := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Time().Before(from) {
			kept = append(kept, e)
		}
	}
	return kept
}

// oldestFirst reverses a newest-first listing without touching the input.
func oldestFirst(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func printCSV(w io.Writer, entries []model.Entry) {
	fmt.Fprintln(w, "id,timestamp,date,title,tags,content")
	for _, e := range entries {
		fmt.Fprintf(w, "%s,%d,%s,%s,%s,%s\n",
			csvEscape(e.ID),
			e.Timestamp,
			csvEscape(e.Time().Format(time.RFC3339)),
			csvEscape(e.Title),
			csvEscape(strings.Join(e.Tags, ";")),
			csvEscape(e.Content),
		)
	}
}

func printMarkdown(w io.Writer, entries []model.Entry) {
	fmt.Fprintln(w, "# Journal")
	for _, e := range entries {
		heading := timecalc.FormatUTC(e.Timestamp)
		if e.Title != "" {
			heading += " – " + e.Title
		}
		fmt.Fprintf(w, "\n## %s\n\n", heading)
		if len(e.Tags) > 0 {
			fmt.Fprintf(w, "_Tags: %s_\n\n", strings.Join(e.Tags, ", "))
		}
		fmt.Fprintln(w, e.Content)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
