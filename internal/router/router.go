// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/handlers"
	"github.com/javajoker/autoimport/internal/middleware"
	"github.com/javajoker/autoimport/internal/services"
	"github.com/javajoker/autoimport/internal/utils"
)

// Services are the collaborators the HTTP layer calls into.
type Services struct {
	Admin  *services.AdminService
	Cars   *services.CarService
	Sync   *services.SyncService
	Import *services.ImportService
}

func Initialize(db *gorm.DB, cfg *config.Config, svc Services) *gin.Engine {
	// Initialize handlers
	carHandler := handlers.NewCarHandler(svc.Cars)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Sync, svc.Import)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.RateLimit(cfg.Server.PublicRPS, cfg.Server.PublicBurst, middleware.ClientIPKey))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"source": cfg.Source.Name,
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Public catalogue
		v1.GET("/cars", carHandler.GetCars)
		v1.GET("/cars/:id", carHandler.GetCar)
		v1.GET("/filters", carHandler.GetFilters)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminRequired(), middleware.RateLimit(cfg.Server.AdminRPS, cfg.Server.AdminBurst, middleware.SubjectKey))
		{
			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.POST("/sync", adminHandler.StartSync)
			admin.GET("/sync/status", adminHandler.GetSyncStatus)
			admin.POST("/cars/:external_id/import", adminHandler.ImportCar)
		}
	}

	return r
}
