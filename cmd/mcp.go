package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdio exposing the journal tools",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	s := mcptools.NewServer(Version, &mcptools.Tools{
		Store:   st,
		Digest:  digestBuilder(),
		Logger:  logger,
		Default: flagUser,
	})
	logger.Info("journal MCP server starting", "user", flagUser)
	return mcptools.Serve(s)
}
