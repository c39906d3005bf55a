package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg     *config.Config
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fittrackctl",
	Short: "Operator tooling for the FitTrack backend",
	Long: `fittrackctl manages a FitTrack deployment from the command line.

It reads the same environment (or .env file) as the API server.

COMMANDS:

  migrate up|down|version|force   Manage the database schema
  week                            Print or export a user's weekly summary
  mcp                             Serve diet and workout tools over MCP (stdio)

EXAMPLES:

  $ fittrackctl migrate up
  $ fittrackctl week --user asha@example.com
  $ fittrackctl week --user asha@example.com --export`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// openDB connects using the loaded configuration. The caller closes it with closeDB.
func openDB() (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
