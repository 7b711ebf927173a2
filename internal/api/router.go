package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quillmed/chartextract/internal/auth"
	"github.com/quillmed/chartextract/internal/middleware"
)

type Router struct {
	handler     *Handler
	authService auth.Service
}

func NewRouter(handler *Handler, authService auth.Service) *Router {
	return &Router{
		handler:     handler,
		authService: authService,
	}
}

func (r *Router) SetupRouter(logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggerMiddleware(logger),
		middleware.RateLimitMiddleware(rate.Every(time.Second), 30),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", r.handler.Login)

		// Stateless parse endpoint: no persistence, no auth required.
		api.POST("/documents/parse", r.handler.ParseDocument)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(r.authService))
		{
			protected.POST("/documents", r.handler.CreateDocument)

			records := protected.Group("/records")
			{
				records.GET("", r.handler.ListRecords)
				records.GET("/search", r.handler.SearchRecords)
				records.GET("/:id", r.handler.GetRecord)
				records.GET("/:id/summary", r.handler.GetRecordSummary)
				records.DELETE("/:id", r.handler.DeleteRecord)
			}

			protected.GET("/audit/logs", r.handler.GetAuditLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	return router
}
