package main

import (
	"fmt"
	"topspin/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func migrateDatabase(cfg *config.Config) error {
	migrator, err := migrate.New(
		"file://resources/migrations",
		"sqlite3://"+cfg.DatabasePath,
	)
	if err != nil {
		return fmt.Errorf("unable to create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("unable to migrate: %w", err)
	}

	return nil
}
