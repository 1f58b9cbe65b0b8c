// Command migrate applies, rolls back, and inspects schema migrations.
//
//	migrate up           apply all pending migrations
//	migrate down [N]     roll back N migrations (default 1)
//	migrate force V      mark version V as applied, clearing a dirty state
//	migrate version      print the current version and dirty flag
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"submana/internal/database"
	"submana/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const usage = "usage: migrate <up|down|force|version> [arg]"

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(command string, args []string) error {
	m, err := newMigrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	switch command {
	case "up":
		return migrateUp(m)
	case "down":
		return migrateDown(m, args)
	case "force":
		return migrateForce(m, args)
	case "version":
		return printVersion(m)
	default:
		return fmt.Errorf("unknown command %q (%s)", command, usage)
	}
}

func newMigrator() (*migrate.Migrate, error) {
	cfg, err := database.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	m, err := migrate.New("file://migrations", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}

func migrateUp(m *migrate.Migrate) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Get().Info("Database already up to date")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}
	logger.Get().Info("Migrations applied successfully")
	return nil
}

func migrateDown(m *migrate.Migrate, args []string) error {
	steps := 1
	if len(args) > 0 {
		var err error
		steps, err = strconv.Atoi(args[0])
		if err != nil || steps < 1 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	logger.Get().Infof("Rolled back %d migration(s)", steps)
	return nil
}

func migrateForce(m *migrate.Migrate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("force requires a version number")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}
	logger.Get().Infof("Forced version to %d", version)
	return nil
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Get().Info("No migrations applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
	return nil
}
