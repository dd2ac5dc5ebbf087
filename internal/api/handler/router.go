// Package handler exposes the complaint lifecycle, filtering and analytics over HTTP.
package handler

import (
	"net/http"
	"time"

	"civictracker/backend/internal/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
	// JWTSecret enables bearer token verification on /api and /ws when set.
	JWTSecret           string
	SubmitRatePerMinute int
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", h.Health)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	auth := middleware.RequireToken(cfg.JWTSecret)
	limiter := middleware.NewRateLimiter(cfg.SubmitRatePerMinute)

	api := r.Group("/api", auth)
	{
		api.GET("/complaints", h.ListComplaints)
		api.POST("/complaints", limiter.Middleware(), h.CreateComplaint)
		api.GET("/complaints/:id", h.GetComplaint)
		api.PATCH("/complaints/:id/status", h.UpdateStatus)
		api.PATCH("/complaints/:id/department", h.UpdateDepartment)
		api.DELETE("/complaints/:id", h.DeleteComplaint)
		api.GET("/complaints/:id/updates", h.ListUpdates)
		api.GET("/analytics", h.Analytics)
		api.POST("/snapshot/refresh", h.RefreshSnapshot)
	}

	r.GET("/ws", auth, h.ServeWebSocket)
	return r
}

func requestLogger(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
