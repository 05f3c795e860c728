// Package main is the entry point for the retailpos API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"

	"retailpos/internal/config"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/catalogs/product"
	v1 "retailpos/internal/infrastructure/http/v1"
	"retailpos/internal/infrastructure/label"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/internal/infrastructure/storage/postgres/auth_repo"
	"retailpos/pkg/logger"
	"retailpos/pkg/numerator"
)

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
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting retailpos server", "env", cfg.App.Env, "version", cfg.App.Version)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalw("invalid timezone", "error", err)
	}

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.PoolConfigFrom(cfg.Postgres, cfg.App.Name))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})

	authConfig := auth.DefaultServiceConfig()
	authConfig.MaxLoginAttempts = cfg.Auth.MaxLoginAttempts
	authConfig.LockDuration = cfg.Auth.LockDuration
	authConfig.BcryptCost = cfg.Auth.BcryptCost
	authService := auth.NewService(auth_repo.NewUserRepo(txManager), txManager, jwtService, authConfig)

	if cfg.Admin.Password != "" {
		admin, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			log.Fatalw("failed to ensure admin account", "error", err)
		}
		if admin != nil {
			log.Infow("created admin account", "email", admin.Email)
		}
	}

	// --- Numbering, rules, labels ---
	numbers := numerator.NewWithResolver(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	lowStock, err := product.NewLowStockRule(cfg.Inventory.LowStockExpr, cfg.Inventory.LowStockThreshold)
	if err != nil {
		log.Fatalw("invalid low-stock rule", "error", err)
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		TxManager:      txManager,
		DB:             pool,
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		Numerator:      numbers,
		Calendar:       analytics.New(loc),
		LowStockRule:   lowStock,
		Labels:         label.NewGenerator(cfg.Label.Size, cfg.Label.Level),
		IdempotencyTTL: cfg.Idempotency.TTL,
		Version:        cfg.App.Version,
		Mode:           cfg.HTTP.Mode,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	var handler http.Handler = router
	if cfg.HTTP.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
