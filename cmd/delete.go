package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a journal entry from every month it appears in",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	deleted, err := st.Delete(cmd.Context(), flagUser, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("entry %q not found", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", id)
	return nil
}
