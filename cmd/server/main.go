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

	"cosmos-server/internal/auth"
	"cosmos-server/internal/location"
	"cosmos-server/internal/middleware"
	"cosmos-server/internal/server"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/database"
	"cosmos-server/internal/shared/logger"
	"cosmos-server/internal/shared/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()

	slog.Info("Starting cosmos server",
		"environment", config.GlobalConfig.Server.Environment,
		"port", config.GlobalConfig.Server.Port,
	)

	db, err := database.Connect()
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	cache, err := redis.Connect()
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}()

	appLogger := slog.Default()

	authRepo := auth.NewRepository(db, appLogger)
	authService := auth.NewService(authRepo, appLogger)
	oauthConfig := auth.InitOAuth()

	locationRepo := location.NewRepository(db, appLogger)
	locationCache := location.NewCache(cache, appLogger)
	locationService := location.NewService(locationRepo, locationCache, appLogger)

	routes := server.NewRoutes(db, cache, locationService, authService, oauthConfig, appLogger)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter()
	corsMiddleware := middleware.NewCORS()
	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + config.GlobalConfig.Server.Port,
		Handler:      handler,
		ReadTimeout:  config.GlobalConfig.Server.ReadTimeout,
		WriteTimeout: config.GlobalConfig.Server.WriteTimeout,
		IdleTimeout:  config.GlobalConfig.Server.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		slog.Info("Shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			if err := srv.Close(); err != nil {
				slog.Error("Forced close failed", "error", err)
			}
		}
	}

	slog.Info("Server stopped")
}
