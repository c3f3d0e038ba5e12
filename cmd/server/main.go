// Package main is the entry point of the report bot webhook server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"crosstab/internal/config"
	"crosstab/internal/domain/auth"
	"crosstab/internal/domain/bot"
	"crosstab/internal/domain/runs"
	v1 "crosstab/internal/infrastructure/http/v1"
	"crosstab/internal/infrastructure/http/v1/handlers"
	"crosstab/internal/infrastructure/pyrus"
	"crosstab/internal/infrastructure/storage/postgres"
	"crosstab/internal/infrastructure/storage/postgres/run_repo"
	"crosstab/internal/worker"
	"crosstab/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CROSSTAB_CONFIG"), "path to config file (json or yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting report bot")

	// --- Run journal ---
	var (
		repo runs.Repository
		db   handlers.Pinger
	)
	if cfg.Database.URL != "" {
		if err := postgres.ApplyMigrations(ctx, cfg.Database.URL); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}

		poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
		if cfg.Database.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Database.MaxConns
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		postgres.LogPoolStats(ctx, pool)

		runRepo, err := run_repo.NewRunRepo(postgres.NewTxManager(pool))
		if err != nil {
			log.Fatalw("failed to create run repository", "error", err)
		}
		repo, db = runRepo, pool
		log.Info("run journal stored in database")
	} else {
		repo = runs.NewMemoryRepository(0)
		log.Info("run journal kept in memory")
	}
	runService := runs.NewService(repo)

	// --- Bot ---
	connector := pyrus.NewConnector(pyrus.Config{
		BaseURL:    cfg.Pyrus.BaseURL,
		AuthURL:    cfg.Pyrus.AuthURL,
		Timeout:    cfg.Pyrus.Timeout,
		RetryCount: cfg.Pyrus.RetryCount,
	}, cfg.Pyrus.Login, cfg.Pyrus.SecurityKey)
	runner := bot.NewRunner(cfg.Bot.Runner(), connector, bot.NewReportsFactory(cfg.Bot.Reports()), runService)

	workers := worker.NewPool(ctx, worker.Config{
		Workers:   cfg.Server.Workers,
		QueueSize: cfg.Server.QueueSize,
	})
	log.Infow("worker pool started", "workers", cfg.Server.Workers, "queue_size", cfg.Server.QueueSize)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:        log,
		Queue:         workers,
		Runner:        runner,
		SecretKey:     cfg.Server.SecretKey,
		SkipSignature: cfg.Server.SkipSignature,
		DB:            db,
		QueueStats:    workers,
	}
	if cfg.Server.AdminJWTSecret != "" {
		routerCfg.Runs = runService
		routerCfg.JWTValidator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.Server.AdminJWTSecret))
		log.Info("admin api enabled")
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	port := strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	// Webhooks already answered 200; let their runs finish.
	if err := workers.Shutdown(shutdownCtx); err != nil {
		log.Errorw("report runs cancelled", "error", err, "stats", workers.Stats())
	}

	log.Info("server stopped")
}
