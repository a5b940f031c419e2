package main

import (
	"context"
	"time"

	"github.com/pulseboard/pulseboard-backend/internal/config"
	"github.com/pulseboard/pulseboard-backend/internal/database"
	"github.com/pulseboard/pulseboard-backend/internal/logger"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/repository"
	"github.com/pulseboard/pulseboard-backend/internal/service"
)

// seed-permissions creates the default permission record for any role that
// has none. Safe to run repeatedly; existing records are never touched.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	permissionRepo := repository.NewPermissionRepository(pool)
	permissionService := service.NewPermissionService(permissionRepo, model.NewCatalog(), nil, 0, log)

	if err := permissionService.EnsureDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("Permission bootstrap failed")
	}

	log.Info().Msg("Default permissions in place for all roles")
}
