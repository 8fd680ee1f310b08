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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/lorrc/logistics-ops-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/logistics-ops-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/logistics-ops-backend/internal/adapters/secondary/memstore"
	"github.com/lorrc/logistics-ops-backend/internal/adapters/secondary/prediction"
	"github.com/lorrc/logistics-ops-backend/internal/auth"
	"github.com/lorrc/logistics-ops-backend/internal/config"
	"github.com/lorrc/logistics-ops-backend/internal/core/services"
	"github.com/lorrc/logistics-ops-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize the mock data store (volatile by design)
	var store *memstore.Store
	if cfg.Store.FixturesPath != "" {
		store, err = memstore.NewFromFile(cfg.Store.FixturesPath, logger)
	} else {
		store, err = memstore.New(logger)
	}
	if err != nil {
		logger.Error("failed to seed data store", "error", err)
		os.Exit(1)
	}

	// 4. Security & external collaborators
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	predictor := prediction.NewHTTPPredictor(cfg.Prediction.Endpoint, cfg.Prediction.Timeout, logger)

	// 5. Real-time core
	registry := services.NewSessionRegistry(logger)
	insightService := services.NewInsightService(predictor, cfg.Prediction.Timeout, logger)
	broadcaster := services.NewBroadcaster(registry, store, services.BroadcasterConfig{
		TickInterval:   cfg.Realtime.TickInterval,
		DashboardEvery: cfg.Realtime.DashboardEvery,
		FetchTimeout:   cfg.Realtime.FetchTimeout,
	}, logger)
	reaper := services.NewReaper(registry, cfg.Realtime.ReaperInterval, cfg.Realtime.SessionIdleTimeout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster.Start(ctx)
	reaper.Start(ctx)

	// 6. Handlers (Primary Adapters)
	wsHandler := httpAdapter.NewWebSocketHandler(registry, insightService, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(store, registry, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RateLimit.Enabled {
		limiter := mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		r.Use(limiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Stop the timers before tearing down connections.
	broadcaster.Stop()
	reaper.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
