// Package main is the entry point for the stockroom API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stockroom/internal/config"
	"stockroom/internal/domain/auth"
	v1 "stockroom/internal/infrastructure/http/v1"
	"stockroom/internal/infrastructure/numerator"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/auth_repo"
	"stockroom/pkg/logger"
)

var version = "dev" // set via -ldflags at build time

func main() {
	cfg, err := config.Load()
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
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	log.Infow("starting stockroom server", "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Document numbering ---
	numeratorService := numerator.New(txManager)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.TokenTTL,
	})
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- HTTP ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		TxManager:    txManager,
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Numerator:    numeratorService,
		Trail:        auditService,
		Version:      version,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Infow("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
