// Package main is the entry point for the Trip Planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/handler"
	"github.com/pkordes/trip-planner/backend/internal/logx"
	"github.com/pkordes/trip-planner/backend/internal/mailer"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
	"github.com/pkordes/trip-planner/backend/migrations"
	"github.com/pkordes/trip-planner/backend/spec"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	logger := logx.New(os.Stdout, logx.Options{
		Level:  logx.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Env:    cfg.Env,
	})
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("database connection established")

	if cfg.RunMigrations {
		if err := migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	txRunner := repo.NewTxRunner(pool)
	jwt := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)

	transport, err := mailer.NewTransport(mailer.Config{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: mailer.SESConfig{
			Region:          cfg.Mail.AWSRegion,
			AccessKeyID:     cfg.Mail.AWSAccessKeyID,
			SecretAccessKey: cfg.Mail.AWSSecretAccessKey,
		},
		LogBody: cfg.Env != "production",
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("mail transport ready", "provider", cfg.Mail.Provider)

	invites := service.NewInviteService(repos.Trips, repos.Invites, txRunner,
		mailer.NewInviteMailer(transport),
		service.InviteConfig{TTL: cfg.InviteTTL, AppURL: cfg.AppURL, Retention: cfg.InviteRetention},
	)
	server := handler.NewServer(handler.Services{
		Trips:   service.NewTripService(repos.Trips, repos.Users, cfg.ReadVisibility),
		Places:  service.NewPlaceService(repos.Trips, repos.Places, cfg.ReadVisibility),
		Invites: invites,
		Auth:    service.NewAuthService(repos.Users, auth.NewBcryptHasher(bcrypt.DefaultCost), jwt),
		Export:  service.NewExportService(repos.Trips, repos.Places, cfg.ReadVisibility),
	})

	if cfg.HousekeepingInterval > 0 {
		housekeeping := service.NewHousekeepingService(invites, logger, cfg.HousekeepingInterval)
		housekeeping.Start()
		defer housekeeping.Stop()
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(server, handler.RouterOptions{
			Logger:       logger,
			Verifier:     jwt,
			CORSOrigins:  cfg.CORSOrigins,
			MaxBodyBytes: cfg.MaxBodyBytes,
			OpenAPI:      spec.OpenAPI,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	n, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "count", n)
	return nil
}
