package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rcmalta/laytrack/internal/api/handler"
	"github.com/rcmalta/laytrack/internal/api/middleware"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/service"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc  *service.AuthService
	GoalSvc  *service.GoalService
	EntrySvc *service.EntryService
	Cfg      *config.Config
}

// SetupRouter creates and configures the Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(deps.AuthSvc)
	goalH := handler.NewGoalHandler(deps.GoalSvc)
	entryH := handler.NewEntryHandler(deps.EntrySvc)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10) // 10 req/s per IP for auth endpoints
	apiRL := middleware.RateLimitMiddleware(30)  // 30 req/s per IP for ledger endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", authH.Register)
			auth.POST("/login", authH.Login)
			auth.POST("/refresh", authH.Refresh)
			auth.GET("/confirm", authH.Confirm)
			auth.POST("/resend", authH.Resend)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW, apiRL)
		{
			// Profile
			authed.GET("/me", authH.Me)

			// Monthly goal
			authed.GET("/goal", goalH.Get)
			authed.PUT("/goal", goalH.Save)

			// Entry ledger
			entries := authed.Group("/entries")
			{
				entries.GET("", entryH.List)
				entries.POST("", entryH.Add)
				entries.POST("/:id/resolve", entryH.Resolve)
				entries.DELETE("/:id", entryH.Delete)
			}
		}
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only the configured
// frontend origin.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == cfg.Server.AllowedOrigin {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
