package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/client"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the digest that would be appended to a conversation",
	Args:  cobra.NoArgs,
	RunE:  runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	// A remote server renders with its own budget.
	if c, ok := st.(*client.Client); ok {
		out, err := c.Digest(cmd.Context(), flagUser)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	entries, err := st.List(cmd.Context(), flagUser)
	if err != nil {
		return err
	}
	out, stats := digestBuilder().BuildWithStats(entries)
	fmt.Fprint(cmd.OutOrStdout(), out)
	logger.Info("digest built", "user", flagUser, "selected", stats.Selected, "total", stats.Total, "chars", stats.Chars)
	return nil
}
