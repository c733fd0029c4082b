package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"topspin/internal/back"
	"topspin/internal/backup"
	"topspin/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error { // nolint:cyclop
	switch command {
	case "serve":
		cfg, b, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(b, cfg)
	case "migrate":
		cfg, err := config.NewFromUserConfigDir()
		if err != nil {
			return err
		}
		return migrateDatabase(cfg)
	case "rerank":
		_, b, err := bootstrap()
		if err != nil {
			return err
		}
		return b.RecomputeRatings()
	case "backup":
		client, err := newBackupClient()
		if err != nil {
			return err
		}
		return client.Backup()
	case "restore":
		client, err := newBackupClient()
		if err != nil {
			return err
		}
		return client.RestoreLatest()
	case "dev:fixtures":
		return loadFixtures()
	case "version":
		fmt.Fprintf(os.Stdout, "Topspin %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

// bootstrap loads the configuration, applies pending migrations, and opens
// the database.
func bootstrap() (*config.Config, *back.Back, error) {
	cfg, err := config.NewFromUserConfigDir()
	if err != nil {
		return nil, nil, err
	}

	if err := migrateDatabase(cfg); err != nil {
		return nil, nil, err
	}

	b, err := back.New("sqlite3", cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, b, nil
}

func newBackupClient() (*backup.Client, error) {
	cfg, err := config.NewFromUserConfigDir()
	if err != nil {
		return nil, err
	}

	return backup.NewClient(cfg)
}

func help() string {
	return fmt.Sprintf(`
Topspin is the rating engine and HTTP API behind the office table-tennis
ladder.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    backup       upload a database snapshot to the configured S3 bucket
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      apply pending database migrations
    rerank       recompute every rating from the full match history
    restore      overwrite the database with the latest S3 backup
    serve        run the HTTP API and the periodic backup daemon
    version      display the current version
`,
		os.Args[0],
	)
}
