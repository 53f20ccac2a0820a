package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/Avinashkumar1307/project-grap/internal/handler"    // handlers implementing the endpoint logic
	"github.com/Avinashkumar1307/project-grap/internal/middleware" // JWT, role, cache and rate limit middleware
	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring systems to verify the service
	// is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Signup, login, refresh
// and the Google OAuth pair live under /v1/auth without a session; profile
// and logout require a valid access token.  The rate limiter guards the
// credential endpoints against brute forcing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Rotates the refresh token: the previous one stops working.
	g.POST("/refresh", a.Refresh)
	// Browser entry point and the registered OAuth callback.
	g.GET("/google", a.GoogleLogin)
	g.GET("/google/callback", a.GoogleCallback)

	auth := e.Group("/v1/auth")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/profile", a.Profile)
	auth.POST("/logout", a.Logout)
}

// RegisterProjects registers the marketplace listing routes.  Browsing is
// public and served through the response cache; everything that mutates a
// listing requires a session.
func RegisterProjects(e *echo.Echo, p *handler.ProjectHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	pub := e.Group("/v1/projects")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("", p.List)
	pub.GET("/popular", p.Popular)
	pub.GET("/latest", p.Latest)

	// The detail view sits outside the cache group so the view counter
	// still bumps on every read.
	e.GET("/v1/projects/:id", p.Get)
	e.GET("/v1/projects/:id/download", p.Download)

	auth := e.Group("/v1/projects")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/mine", p.Mine)
	auth.POST("", p.Create)
	auth.PUT("/:id", p.Update)
	auth.DELETE("/:id", p.Delete)
	auth.POST("/:id/image", p.UploadImage)
	auth.POST("/:id/images", p.UploadImages)
	auth.DELETE("/:id/images", p.DeleteImage)
}

// RegisterCustomRequests registers the bespoke development request routes.
// Every route requires a session; the stats and status views are admin only.
func RegisterCustomRequests(e *echo.Echo, r *handler.CustomRequestHandler, jwtSecret string) {
	g := e.Group("/v1/custom-requests")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", r.Create)
	g.GET("", r.List)
	g.GET("/mine", r.Mine)
	g.GET("/:id", r.Get)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)

	admin := e.Group("/v1/custom-requests")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", r.Stats)
	admin.GET("/status/:status", r.ByStatus)
	admin.PATCH("/:id/status", r.UpdateStatus)
}

// RegisterTransactions registers the transaction records and the payment
// flow.  The webhook is the only public route: the gateway authenticates
// itself with the webhook signature, not a session.
func RegisterTransactions(e *echo.Echo, t *handler.TransactionHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	// Gateway deliveries carry their own HMAC; no JWT here.
	e.POST("/v1/transactions/webhook", t.Webhook)

	g := e.Group("/v1/transactions")
	g.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/orders", t.CreateOrder)
	g.POST("/verify", t.Verify)
	g.GET("/mine", t.Mine)
	g.GET("/history", t.History)
	g.GET("/stats", t.Stats)
	g.GET("/:id", t.Get)

	admin := e.Group("/v1/transactions")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", t.Create)
	admin.GET("", t.List)
	admin.GET("/project/:projectId", t.ByProject)
	admin.PATCH("/:id/status", t.UpdateStatus)
	admin.POST("/:id/refund", t.Refund)
}

// RegisterPurchases registers the purchase history routes.
func RegisterPurchases(e *echo.Echo, p *handler.PurchaseHandler, jwtSecret string) {
	g := e.Group("/v1/purchases")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", p.Create)
	g.GET("", p.List)
	g.GET("/:id", p.Get)

	admin := e.Group("/v1/purchases")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.PATCH("/:id/status", p.UpdateStatus)
}
