package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	// Extracted books, addressed by the cover and page URLs stored on each book
	layout := cfg.Library.Layout()
	router.Static(layout.PublicPrefix, layout.Root)

	// Reader UI
	if cfg.ViewerPath != "" {
		router.Static("/viewer", cfg.ViewerPath)
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/viewer/")
		})
	}

	health := NewHealthController(cfg.Database, cfg.Library, cfg.Version)
	booksController := NewBooksController(cfg.Library)
	progressController := NewProgressController(cfg.Library)
	uploadController := NewUploadController(cfg.Ingester, cfg.MaxUploadBytes)
	deleteController := NewDeleteController(cfg.Library)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Books API endpoints
	api.GET("/books", booksController.GetAllBooks)
	if cfg.UploadLimits.MaxFailures > 0 {
		limiter := NewUploadLimiter(cfg.UploadLimits)
		api.POST("/books/upload", limiter.Middleware(), uploadController.Upload)
	} else {
		api.POST("/books/upload", uploadController.Upload)
	}
	api.GET("/books/:id", booksController.GetBook)
	api.DELETE("/books/:id", deleteController.DeleteBook)
	api.GET("/books/:id/pages/:page", booksController.GetPage)

	// Reading progress endpoints
	api.GET("/progress/:id", progressController.GetProgress)
	api.POST("/progress/:id", progressController.UpdateProgress)

	// Audit trail
	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}

// corsMiddleware allows the reader UI to be served from another origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
