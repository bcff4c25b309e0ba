// Command pocketlifts runs the Pocket Lifts workout logger: the HTTP API
// and frontend, an MCP server, and a few maintenance commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/pocketlifts/internal/config"
	"github.com/claude/pocketlifts/internal/storage"
	"github.com/claude/pocketlifts/internal/tracker"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
	log *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "pocketlifts",
		Short: "Pocket Lifts workout logger",
		Long: `Pocket Lifts logs strength training sessions: movements, sets and workouts,
stored in a local SQLite file. Run "pocketlifts serve" for the web app.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(movementsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads the config and builds the logger. Logs go to stderr so
// stdout stays free for CSV output and the MCP stdio transport.
func initConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
		if _, err := c.Log.SlogLevel(); err != nil {
			return err
		}
	}
	cfg = c
	log = cfg.Log.NewLogger(os.Stderr)
	return nil
}

// openTracker opens the database and loads the tracker from it. The caller
// closes the returned DB.
func openTracker(ctx context.Context) (*tracker.Tracker, *storage.DB, error) {
	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("database opened", "path", db.Path())

	t := tracker.New(ctx, db, tracker.Options{
		Seed:   cfg.Storage.Seed,
		Locale: cfg.Display.Locale,
	}, log)
	return t, db, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pocketlifts %s\n", Version)
			return err
		},
	}
}
