package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/movigoo/host-server/internal/api"
	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/config"
	"github.com/movigoo/host-server/internal/email"
	"github.com/movigoo/host-server/internal/metrics"
	"github.com/movigoo/host-server/internal/storage/postgres"
	"github.com/movigoo/host-server/internal/telemetry"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", version).Msg("starting host server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init(version, commit, buildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MinConns = int32(cfg.Database.MaxIdle)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	if err := bootstrapAdminUser(ctx, pool, cfg.AdminBootstrap, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}

	notifier, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Repo:     repo,
		Pool:     pool,
		Notifier: notifier,
		Version:  version,
	})

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sessions := auth.NewSessionAuthenticator(repo.Sessions(), cfg.Sessions.MaxAge)
	collector := metrics.NewDBCollector(pool)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info().Str("addr", apiServer.Addr).Msg("api listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		collector.Start(groupCtx, 15*time.Second)
		return nil
	})

	group.Go(func() error {
		runSessionSweeper(groupCtx, sessions, cfg.Sessions, logger)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api shutdown error")
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown error")
		}
		return nil
	})

	return group.Wait()
}

// runSessionSweeper purges expired sessions on a fixed interval. With no
// session MaxAge configured nothing ever expires and the sweeper idles.
func runSessionSweeper(ctx context.Context, sessions *auth.SessionAuthenticator, cfg config.SessionConfig, logger zerolog.Logger) {
	if cfg.MaxAge <= 0 || cfg.SweepInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := sessions.SweepExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if swept > 0 {
				metrics.SessionsSweptTotal.Add(float64(swept))
				logger.Info().Int64("count", swept).Msg("expired sessions purged")
			}
		}
	}
}

// bootstrapAdminUser seeds the first review-console account from env
// configuration. Existing accounts are left untouched.
func bootstrapAdminUser(ctx context.Context, pool *pgxpool.Pool, bootstrap config.AdminBootstrapConfig, logger zerolog.Logger) error {
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		return nil
	}

	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const checkQuery = `SELECT id FROM admin_users WHERE email = $1 OR username = $2 LIMIT 1`
	var existingID string
	err := pool.QueryRow(bootCtx, checkQuery, bootstrap.Email, bootstrap.Username).Scan(&existingID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrap.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	const insertQuery = `
INSERT INTO admin_users (username, email, password_hash)
VALUES ($1, $2, $3)`
	if _, err := pool.Exec(bootCtx, insertQuery, bootstrap.Username, bootstrap.Email, string(hash)); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info().Str("email", bootstrap.Email).Msg("bootstrapped admin user")
	return nil
}
