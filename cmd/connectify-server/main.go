// Package main is the entry point for the Connectify user API server.
// Connectify is a user-account backend with two-phase email signup,
// token-based login and friendships.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/cache/memory"
	rediscache "github.com/connectify/user-api/internal/cache/redis"
	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/handler"
	"github.com/connectify/user-api/internal/mail"
	"github.com/connectify/user-api/internal/observability"
	"github.com/connectify/user-api/internal/ratelimit"
	"github.com/connectify/user-api/internal/repository"
	"github.com/connectify/user-api/internal/repository/postgres"
	"github.com/connectify/user-api/internal/repository/sqlite"
	"github.com/connectify/user-api/internal/service"
	"github.com/connectify/user-api/internal/session"
	"github.com/connectify/user-api/internal/storage"
	"github.com/connectify/user-api/internal/validate"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Connectify server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	repos, db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Cache: Redis in production, in-process fallback for development
	cache, cacheHealth, cacheClose, err := openCache(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cacheClose()

	// Outgoing mail
	var mailer mail.Sender
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPSender(cfg.SMTP)
	} else {
		logger.Warn().Msg("SMTP not configured, emails will be logged")
		mailer = mail.NewLogSender(logger)
	}

	// Avatar storage
	var avatars storage.Backend
	if cfg.Storage.Backend == "s3" {
		s3, err := storage.NewS3Backend(ctx, cfg.Storage.S3, logger)
		if err != nil {
			return fmt.Errorf("open avatar storage: %w", err)
		}
		avatars = s3
	}

	// Metrics
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// Core components
	pending := session.NewPendingStore(cache, cfg.Session.TTL, cfg.Session.CodeTTL, logger)
	lockout := ratelimit.NewLockout(cache, cfg.Lockout, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	validator := validate.New()

	// Services
	registration := service.NewRegistrationService(
		repos.User, pending, validator, mailer, cfg.Auth.BcryptCost, logger)
	login := service.NewLoginService(repos.User, lockout, tokens, logger)
	resets := service.NewPasswordResetService(
		repos.User, mailer, cfg.Auth.ResetTokenTTL, cfg.Auth.BcryptCost, logger)
	users := service.NewUserService(repos.User, repos.Friendship, validator, logger)
	friendships := service.NewFriendshipService(repos.Friendship, repos.User, logger)
	accounts := service.NewAccountService(repos.User, avatars, cfg.Auth.BcryptCost, logger)

	// HTTP layer
	router := handler.NewRouter(handler.RouterConfig{
		Auth:        handler.NewAuthHandler(registration, login, resets, cfg.Session, metrics, logger),
		User:        handler.NewUserHandler(users, accounts, cfg.Server.MaxBodySize, logger),
		Friendship:  handler.NewFriendshipHandler(friendships, logger),
		AuthMW:      auth.NewMiddleware(tokens, repos.User, logger),
		Limiter:     ratelimit.NewLimiter(cfg.RateLimit),
		Metrics:     metrics,
		DB:          db,
		CacheHealth: cacheHealth,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if metrics != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}
	return nil
}

// openDatabase connects to the configured database driver and returns the
// repository bundle over it.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		return repository.Repositories{
			User:       postgres.NewUserRepository(db),
			Friendship: postgres.NewFriendshipRepository(db),
		}, db, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqliteConfig(cfg), logger)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		return repository.Repositories{
			User:       sqlite.NewUserRepository(db),
			Friendship: sqlite.NewFriendshipRepository(db),
		}, db, nil

	default:
		return repository.Repositories{}, nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// openCache connects to Redis when enabled, otherwise falls back to the
// in-process cache. Returns the cache, its health check and a closer.
func openCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (repository.Cache, func(ctx context.Context) error, func(), error) {
	if cfg.Enabled {
		cache, err := rediscache.NewCache(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return cache, cache.Health, func() { _ = cache.Close() }, nil
	}

	logger.Warn().Msg("Redis disabled, using in-process cache; sessions and lockouts do not survive restarts")
	cache := memory.NewCache()
	health := func(ctx context.Context) error { return nil }
	return cache, health, cache.Stop, nil
}

// sqliteConfig maps the flat database configuration onto the SQLite driver
// configuration.
func sqliteConfig(cfg config.DatabaseConfig) sqlite.Config {
	c := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		c.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		c.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		c.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		c.SynchronousMode = cfg.SynchronousMode
	}
	return c
}

// newLogger builds the root logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
