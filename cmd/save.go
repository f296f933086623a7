package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var (
	saveContent   string
	saveID        string
	saveTitle     string
	saveTags      string
	saveTimestamp string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or overwrite a journal entry",
	Long: `Create a journal entry, or overwrite the entry with --id in the month of
--timestamp. Without --content the entry text is read from stdin.`,
	Args: cobra.NoArgs,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveContent, "content", "", "Entry text (default: read stdin)")
	saveCmd.Flags().StringVar(&saveID, "id", "", "Id of the entry to overwrite")
	saveCmd.Flags().StringVar(&saveTitle, "title", "", "Optional title")
	saveCmd.Flags().StringVar(&saveTags, "tags", "", "Comma-separated tags")
	saveCmd.Flags().StringVar(&saveTimestamp, "timestamp", "", "Milliseconds since epoch, RFC 3339 or YYYY-MM-DD (default: now)")
}

func runSave(cmd *cobra.Command, args []string) error {
	in := model.EntryInput{}
	if saveID != "" {
		in.ID = &saveID
	}
	if cmd.Flags().Changed("title") {
		in.Title = &saveTitle
	}
	if saveTags != "" {
		in.Tags = parseTags(saveTags)
	}
	if saveTimestamp != "" {
		ms, err := parseTimestamp(saveTimestamp)
		if err != nil {
			return err
		}
		in.Timestamp = model.MillisPtr(ms)
	}

	content := saveContent
	if !cmd.Flags().Changed("content") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading content from stdin: %w", err)
		}
		content = strings.TrimRight(string(data), "\n")
	}
	in.Content = &content

	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entry, err := st.Save(cmd.Context(), flagUser, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved entry %s at %s\n", entry.ID, timecalc.FormatUTC(entry.Timestamp))
	return nil
}

func parseTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// parseTimestamp accepts epoch milliseconds, RFC 3339 or a bare UTC date.
func parseTimestamp(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid --timestamp value %q: want milliseconds, RFC 3339 or YYYY-MM-DD", s)
}
