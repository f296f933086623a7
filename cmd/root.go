package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-journal/internal/client"
	"github.com/Tiliavir/trivial-journal/internal/config"
	"github.com/Tiliavir/trivial-journal/internal/digest"
	"github.com/Tiliavir/trivial-journal/internal/storage"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	flagUser     string
	flagServer   string
	flagLogLevel string
	flagConfig   string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Trivial Journal – per-user journal entries for an assistant host",
	Long: `journal keeps dated journal entries per user, partitioned by month, and
renders them as a bounded digest that is appended to outbound model
conversations. Entries live as JSON files under data/<user>/journal/ or in a
SQLite database, and can be served over HTTP or MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "guest", "Journal owner")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Use the journal server at this URL instead of local storage")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.journal/config.json)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	logger = newLogger(cmd.ErrOrStderr(), flagLogLevel)
	slog.SetDefault(logger)

	path := flagConfig
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg = c
	if flagServer != "" {
		cfg.Client.URL = flagServer
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openStore returns the remote client when a server URL is configured and
// the local backend otherwise. The returned func releases the store.
func openStore(ctx context.Context) (storage.Store, func(), error) {
	if cfg.Client.URL != "" {
		return client.New(ctx, cfg.Client.URL, cfg.Client.Token), func() {}, nil
	}
	st, err := openLocalStore()
	if err != nil {
		return nil, nil, err
	}
	return st, closerFor(st), nil
}

// openLocalStore opens the configured backend, ignoring any server URL.
func openLocalStore() (storage.Store, error) {
	return storage.Open(storage.Options{
		Backend:    cfg.Backend,
		DataDir:    cfg.DataDir,
		SQLitePath: cfg.SQLitePath,
		Logger:     logger,
	})
}

func closerFor(st storage.Store) func() {
	c, ok := st.(io.Closer)
	if !ok {
		return func() {}
	}
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}
}

func digestBuilder() *digest.Builder {
	return digest.New(cfg.DigestBudget, logger)
}
