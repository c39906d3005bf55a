package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	"github.com/pageza/fittrack/backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateSteps int

// migrateLogger adapts slog to the golang-migrate Logger interface.
type migrateLogger struct {
	log     *slog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
}

func (l migrateLogger) Verbose() bool { return l.verbose }

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back the SQL migrations embedded in the binary.

SQLite databases are created with auto-migration and only support "up".`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DBDriver == "sqlite" {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := database.RunMigrations(db, ""); err != nil {
				return err
			}
			color.Green("Schema is up to date")
			return nil
		}

		return withMigrator(func(m *migrate.Migrate) error {
			err := m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				color.Yellow("No pending migrations")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			color.Green("Migrations applied")
			return printVersion(m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back the most recent migrations.

  fittrackctl migrate down            # roll back one migration
  fittrackctl migrate down --steps 0  # roll back everything`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		return withMigrator(func(m *migrate.Migrate) error {
			var err error
			if migrateSteps <= 0 {
				err = m.Down()
			} else {
				err = m.Steps(-migrateSteps)
			}
			if errors.Is(err, migrate.ErrNoChange) {
				color.Yellow("Nothing to roll back")
				return nil
			}
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			color.Green("Rollback complete")
			return printVersion(m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		return withMigrator(printVersion)
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark the schema as VERSION without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force failed: %w", err)
			}
			color.Yellow("Schema forced to version %d", version)
			return nil
		})
	},
}

func requirePostgres() error {
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("this command needs DB_DRIVER=postgres, got %q", cfg.DBDriver)
	}
	return nil
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	m, err := database.NewMigrator(cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer m.Close()
	m.Log = migrateLogger{log: logger, verbose: verbose}
	return fn(m)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	state := color.GreenString("clean")
	if dirty {
		state = color.RedString("dirty")
	}
	fmt.Printf("Schema version %d (%s)\n", version, state)
	return nil
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back, 0 for all")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
	rootCmd.AddCommand(migrateCmd)
}
