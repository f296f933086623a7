package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the journal lives and how big its digest is",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	out := cmd.OutOrStdout()

	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := st.List(cmd.Context(), flagUser)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "User: %s\n", flagUser)
	switch {
	case cfg.Client.URL != "":
		fmt.Fprintf(out, "Store: remote %s\n", cfg.Client.URL)
	case cfg.Backend == "sqlite":
		fmt.Fprintf(out, "Store: sqlite %s\n", cfg.SQLitePath)
	default:
		fmt.Fprintf(out, "Store: files %s\n", cfg.DataDir)
	}
	fmt.Fprintf(out, "Entries: %d\n", len(entries))
	if len(entries) == 0 {
		return nil
	}

	latest := entries[0]
	age := int64(now.Sub(latest.Time()).Seconds())
	fmt.Fprintf(out, "Latest: %s (%s ago)\n", timecalc.FormatUTC(latest.Timestamp), formatElapsed(age))

	builder := digestBuilder()
	_, stats := builder.BuildWithStats(entries)
	fmt.Fprintf(out, "Digest: %d of %d entries, %d/%d characters\n",
		stats.Selected, stats.Total, stats.Chars, builder.Budget)
	if stats.Truncated {
		fmt.Fprintln(out, "Warning: digest is truncated; the newest entries are not injected.")
	}
	return nil
}

func formatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh", d, h)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
