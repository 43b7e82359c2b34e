// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, rate limiting,
// CORS, and compression.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after the logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and gzip
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/alevras/go-match-backend/internal/config"
	"github.com/alevras/go-match-backend/internal/http/handlers"
	"github.com/alevras/go-match-backend/internal/http/middleware"
	"github.com/alevras/go-match-backend/internal/realtime"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, mounts the Socket.IO transport, and exposes health and metrics
// endpoints. All dependencies are injected.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, rt *realtime.Server, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(limiter.Handler())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-User-ID", "X-Request-ID")
	r.Use(cors.New(corsCfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Socket.IO transport for realtime rooms.
	r.GET("/socket.io/*any", gin.WrapH(rt.IO()))
	r.POST("/socket.io/*any", gin.WrapH(rt.IO()))

	api := r.Group(cfg.APIBasePath)
	{
		api.POST("/matches", h.RecordAndDetect)

		api.GET("/chats", h.ListChats)
		api.POST("/chats/:id/messages", h.PostChatMessage)
		api.GET("/chats/:id/messages", h.ListChatMessages)

		api.GET("/digests/personal", h.RunPersonalDigest)
		api.GET("/digests/global", h.RunGlobalDigest)

		api.POST("/push/subscriptions", h.RegisterSubscription)
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"code":    "method_not_allowed",
			"message": "method not allowed",
		})
	})
}

// limitBody caps the request body size so oversized payloads fail fast.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
