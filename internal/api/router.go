package api

import (
	"github.com/gin-gonic/gin"

	"github.com/acuellar/atiende/internal/api/admin"
	"github.com/acuellar/atiende/internal/api/middleware"
	"github.com/acuellar/atiende/internal/api/widget"
	"github.com/acuellar/atiende/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	adminService *service.AdminService,
	widgetService *service.WidgetService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Static files (chat page, widget loader)
	SetupStaticRoutes(r)

	// Widget API (public)
	widgetHandler := widget.NewHandler(widgetService)
	widgetGroup := r.Group("/api/widget")
	widgetHandler.RegisterRoutes(widgetGroup)

	// Admin API (requires API key)
	adminHandler := admin.NewHandler(adminService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.Auth(cfg.APIKey))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
