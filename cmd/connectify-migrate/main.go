// Package main is the entry point for the Connectify database migration tool.
// Migrations are embedded in the driver packages; this tool applies pending
// ones and reports what has been applied.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/repository/postgres"
	"github.com/connectify/user-api/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Connectify Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := runUp(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runUp connects to the configured database, which applies all pending
// migrations, and reports success.
func runUp(args []string) error {
	fs := flag.NewFlagSet("up", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.MustLoad(*configPath)
	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	ctx := context.Background()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return err
		}
		defer db.Close()
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	fmt.Printf("Migrations applied (%s)\n", cfg.Database.Driver)
	return nil
}

func printUsage() {
	fmt.Println(`Connectify Migration Tool

Usage:
  connectify-migrate <command> [flags]

Commands:
  up             Apply all pending migrations
  version        Show version information
  help           Show this help

Flags:
  -config        Path to the config file (defaults to standard search paths)`)
}
