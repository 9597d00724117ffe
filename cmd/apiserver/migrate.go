package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/oncurve/internal/config"
	"github.com/ramonehamilton/oncurve/internal/storage"
)

const migrateUsage = "usage: apiserver [-db-path path] [-config path] migrate up|down|version"

// migrateCommand handles "apiserver migrate <command>" against the card
// cache database named by the config and -db-path.
func migrateCommand(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New(migrateUsage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Cache.DBPath = *dbPath
	}
	path, err := cfg.GetCacheDBPath()
	if err != nil {
		return err
	}
	return runMigrate(path, args[0], out)
}

// runMigrate applies command to the database at path. "down" drops the card
// cache table; the next server start recreates it empty.
func runMigrate(path, command string, out io.Writer) error {
	switch command {
	case "up", "down", "version", "status":
	default:
		return fmt.Errorf("unknown migrate command %q\n%s", command, migrateUsage)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	mgr, err := storage.NewMigrationManager(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "apiserver: close migration manager: %v\n", err)
		}
	}()

	switch command {
	case "up":
		fmt.Fprintln(out, "Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return err
		}
	case "down":
		fmt.Fprintln(out, "Rolling back all migrations...")
		if err := mgr.Down(); err != nil {
			return err
		}
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(out, "Current version: %d (dirty)\n", version)
	} else {
		fmt.Fprintf(out, "Current version: %d\n", version)
	}
	return nil
}
