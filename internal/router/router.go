package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "expenso/docs"
	"expenso/internal/config"
	"expenso/internal/domain"
	"expenso/internal/handler"
	"expenso/internal/middleware"
	"expenso/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	batchH *handler.BatchHandler,
	recordH *handler.RecordHandler,
	fileH *handler.FileHandler,
	userH *handler.UserHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Batch routes
	batches := protected.Group("/batches")
	batches.POST("", batchH.Submit)
	batches.GET("", batchH.List)
	batches.GET("/:id", batchH.GetByID)
	batches.GET("/:id/records", batchH.Records)
	batches.GET("/:id/delta", batchH.Delta)
	batches.POST("/:id/review", batchH.Resolve)
	batches.GET("/:id/export/csv", batchH.ExportCSV)
	batches.GET("/:id/export/xlsx", batchH.ExportXLSX)

	// Record routes
	records := protected.Group("/records")
	records.GET("/:id", recordH.GetByID)
	records.PATCH("/:id", recordH.Update)
	records.POST("/:id/resolve-issue", recordH.ResolveIssue)

	// File routes
	files := protected.Group("/files")
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)
	files.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), fileH.Delete)

	// Stats
	protected.GET("/stats", statsH.GetStats)

	// User management
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/me", userH.Me)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	return r
}
