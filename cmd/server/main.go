package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulseboard/pulseboard-backend/internal/config"
	"github.com/pulseboard/pulseboard-backend/internal/database"
	"github.com/pulseboard/pulseboard-backend/internal/handler"
	"github.com/pulseboard/pulseboard-backend/internal/logger"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/repository"
	"github.com/pulseboard/pulseboard-backend/internal/router"
	"github.com/pulseboard/pulseboard-backend/internal/service"
	"github.com/pulseboard/pulseboard-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Pulseboard Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	permissionRepo := repository.NewPermissionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	workflowRepo := repository.NewWorkflowRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	catalog := model.NewCatalog()
	authService := service.NewAuthService(cfg, userRepo, rdb)
	permissionService := service.NewPermissionService(permissionRepo, catalog, rdb, cfg.PermissionCacheTTL, log)
	workflowService := service.NewWorkflowService(workflowRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Bootstrap Default Permissions ────────────────────────────────
	// Seed any missing role record BEFORE accepting traffic, so the first
	// request never races the lazy bootstrap.
	if err := permissionService.EnsureDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("Permission bootstrap failed")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Permission: handler.NewPermissionHandler(permissionService),
		Dashboard:  handler.NewDashboardHandler(dashboardService, permissionService),
		Workflow:   handler.NewWorkflowHandler(workflowService),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, permissionService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
