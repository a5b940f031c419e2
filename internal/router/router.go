package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/config"
	"github.com/pulseboard/pulseboard-backend/internal/handler"
	"github.com/pulseboard/pulseboard-backend/internal/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/response"
	"github.com/pulseboard/pulseboard-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Permission *handler.PermissionHandler
	Dashboard  *handler.DashboardHandler
	Workflow   *handler.WorkflowHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	permissionService *service.PermissionService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the login route (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))
	{
		// Own permissions — any authenticated role, used by the frontend
		// to gate navigation and widgets.
		api.GET("/permissions/me", handlers.Permission.GetMine)

		// Permission management — admin only, mirrors the access-control
		// page operations.
		adminAPI := api.Group("/permissions")
		adminAPI.Use(middleware.RequireAdmin())
		{
			adminAPI.GET("", handlers.Permission.GetAll)
			adminAPI.GET("/:role", handlers.Permission.GetByRole)
			adminAPI.PUT("", handlers.Permission.Update)
			adminAPI.POST("/reset/:role", handlers.Permission.Reset)
		}

		// Dashboard page.
		api.GET("/dashboard",
			middleware.RequirePageAccess(permissionService, model.PageDashboard),
			handlers.Dashboard.GetDashboard,
		)

		// Workflows page.
		workflows := api.Group("/workflows")
		workflows.Use(middleware.RequirePageAccess(permissionService, model.PageWorkflows))
		{
			workflows.GET("",
				middleware.RequireAction(permissionService, model.ResourceWorkflowItems, model.ActionView),
				handlers.Workflow.ListWorkflows,
			)
			workflows.GET("/:id",
				middleware.RequireAction(permissionService, model.ResourceWorkflowItems, model.ActionView),
				handlers.Workflow.GetWorkflow,
			)
			workflows.POST("",
				middleware.RequireAction(permissionService, model.ResourceWorkflowItems, model.ActionCreate),
				handlers.Workflow.CreateWorkflow,
			)
			workflows.PUT("/:id",
				middleware.RequireAction(permissionService, model.ResourceWorkflowItems, model.ActionEdit),
				handlers.Workflow.UpdateWorkflow,
			)
			workflows.DELETE("/:id",
				middleware.RequireAction(permissionService, model.ResourceWorkflowItems, model.ActionDelete),
				handlers.Workflow.DeleteWorkflow,
			)
		}
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	// Browsers cannot set headers on WebSocket upgrades; the JWT arrives
	// as ?token=... and RequireJWT falls back to it.
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireJWT(authService), middleware.RequireAdmin())
	{
		wsGroup.GET("/permissions/stream", handlers.WS.PermissionStream)
	}

	return router
}
