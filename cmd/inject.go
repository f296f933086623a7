package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/hook"
	"github.com/Tiliavir/trivial-journal/internal/model"
)

var injectEntries string

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Append the journal digest to a conversation payload read from stdin",
	Long: `Read a JSON payload {"messages": [...]} from stdin, append the user's journal
digest to the first message and write the payload to stdout. The payload is
written unchanged when nothing can be added.`,
	Args: cobra.NoArgs,
	RunE: runInject,
}

func init() {
	injectCmd.Flags().StringVar(&injectEntries, "entries", "", "JSON file of entries to use instead of the store")
}

func runInject(cmd *cobra.Command, args []string) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading payload from stdin: %w", err)
	}

	id := hook.Identity{Username: flagUser}
	if injectEntries != "" {
		entries, err := readEntries(injectEntries)
		if err != nil {
			return err
		}
		id.Entries = entries
	}

	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	injector := hook.New(st, digestBuilder(), logger)
	out, added := injector.InjectJSON(cmd.Context(), raw, id)
	logger.Info("inject finished", "user", flagUser, "added", added)

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func readEntries(path string) ([]model.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	entries := []model.Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing entries %s: %w", path, err)
	}
	return entries, nil
}
