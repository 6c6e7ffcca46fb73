// Package main is the entry point for the Connectify admin CLI.
// This tool provides administrative commands for managing user accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
	"github.com/connectify/user-api/internal/repository/postgres"
	"github.com/connectify/user-api/internal/repository/sqlite"
	"github.com/connectify/user-api/internal/service"
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
		fmt.Printf("Connectify Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create-admin":
		if err := runCreateAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "promote":
		if err := runPromote(os.Args[2:]); err != nil {
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

func runCreateAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	gender := fs.String("gender", "other", "gender (male, female, other)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return fmt.Errorf("-username and -email are required")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	ctx := context.Background()
	accounts, cleanup, err := openAccounts(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := accounts.CreateAdmin(ctx, service.CreateAdminInput{
		FirstName: *firstName,
		LastName:  *lastName,
		Username:  *username,
		Email:     *email,
		Gender:    domain.Gender(*gender),
		Password:  password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %s (%s)\n", user.Username, user.ID)
	return nil
}

func runPromote(args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "username to promote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("-username is required")
	}

	ctx := context.Background()
	accounts, cleanup, err := openAccounts(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := accounts.PromoteAdmin(ctx, *username)
	if err != nil {
		return err
	}

	fmt.Printf("Promoted %s (%s) to admin\n", user.Username, user.ID)
	return nil
}

// openAccounts loads configuration, connects to the database and builds the
// account service. The CLI logs quietly; errors are reported on stderr.
func openAccounts(ctx context.Context, configPath string) (*service.AccountService, func(), error) {
	cfg := config.MustLoad(configPath)
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	var (
		users repository.UserRepository
		db    repository.DatabaseHealth
	)
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		users, db = postgres.NewUserRepository(pg), pg
	case "sqlite":
		lite, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		users, db = sqlite.NewUserRepository(lite), lite
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	accounts := service.NewAccountService(users, nil, cfg.Auth.BcryptCost, logger)
	return accounts, func() { _ = db.Close() }, nil
}

// readPassword prompts for the password twice without echoing.
func readPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(password), nil
}

func printUsage() {
	fmt.Println(`Connectify Admin CLI

Usage:
  connectify-admin <command> [flags]

Commands:
  create-admin   Create an admin account (prompts for password)
  promote        Grant admin privileges to an existing user
  version        Show version information
  help           Show this help

Flags:
  -config        Path to the config file (defaults to standard search paths)

Examples:
  connectify-admin create-admin -username root -email root@example.com
  connectify-admin promote -username ada`)
}
