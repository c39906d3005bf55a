package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/pageza/fittrack/backend/internal/database"
)

// migrate is the container entrypoint used before the API starts. fittrackctl offers the same
// operations interactively.
func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	m, err := database.NewMigrator(dsn)
	if err != nil {
		log.Fatalf("failed to initialise migrations: %v", err)
	}
	defer m.Close()

	if *rollback {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Println("No migrations to apply")
	case err != nil:
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("failed to read schema version: %v", err)
	}
	log.Printf("Schema version %d (dirty=%v)", version, dirty)
}
