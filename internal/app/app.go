package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sketchbook/sketchbook/handlers"
	"github.com/sketchbook/sketchbook/internal/config"
	drawinghandler "github.com/sketchbook/sketchbook/internal/drawing/handler"
	drawingservice "github.com/sketchbook/sketchbook/internal/drawing/service"
	"github.com/sketchbook/sketchbook/internal/sessions"
	"github.com/sketchbook/sketchbook/internal/storage"
	"github.com/sketchbook/sketchbook/internal/users"
	"github.com/sketchbook/sketchbook/pkg/middleware"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Deps is everything the HTTP surface needs, built once in main and passed in.
type Deps struct {
	Config   *config.Config
	Users    *users.Service
	Sessions *sessions.Manager
	Drawings *drawingservice.Service

	// LocalBlobs is set when blobs are kept in process; its signed URLs are
	// served under /blobs.
	LocalBlobs *storage.LocalStorage
	Redis      *redis.Client

	// Checks are run by /ready, keyed by dependency name.
	Checks map[string]Check
}

var startTime = time.Now()

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(nil), gin.Recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", ready(d.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	if d.LocalBlobs != nil {
		r.GET("/blobs/*key", d.LocalBlobs.Handler())
	}

	var limit []gin.HandlerFunc
	if rl := d.Config.RateLimit; rl.Enabled {
		if rl.UseRedis && d.Redis != nil {
			win := time.Duration(rl.WindowSeconds) * time.Second
			limit = append(limit, middleware.RedisRateLimitMiddleware(d.Redis, rl.RPS, rl.Burst, win))
		} else {
			limit = append(limit, middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	handlers.NewAuthHandler(d.Users, d.Sessions).Register(r.Group("/", limit...))

	// session first so the limiter keys on the user
	mw := append([]gin.HandlerFunc{middleware.SessionMiddleware(d.Sessions)}, limit...)
	drawinghandler.RegisterDrawingRoutes(r, drawinghandler.New(d.Drawings, d.Config.Upload.MaxBytes), mw...)

	return r
}

func ready(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ok := true
		deps := map[string]bool{}
		for name, check := range checks {
			deps[name] = check(ctx) == nil
			ok = ok && deps[name]
		}
		uptime := fmt.Sprintf("%s", time.Since(startTime).Round(time.Second))
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	}
}

// cors echoes the request origin so the browser client can send the session
// cookie cross-origin during development.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
