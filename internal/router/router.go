package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/handler"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login, logout and identity
// introspection. Register and login sit behind the per-IP attempt
// window so brute force attempts are throttled regardless of
// credential correctness.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	window := middleware.NewLoginWindow(rl, rdb)

	g := e.Group("/api/auth")
	g.POST("/register", a.Register, window)
	g.POST("/login", a.Login, window)

	// Logout, whoami and the CSRF token endpoint need a live session.
	g.POST("/logout", a.Logout, middleware.RequireAuth())
	g.POST("/logout-all", a.LogoutAll, middleware.RequireAuth())
	g.GET("/me", a.Me, middleware.RequireAuth())
	g.GET("/csrf-token", a.CSRFToken, middleware.RequireAuth())
}

// RegisterOAuth registers the Google login flow. Callers should only
// invoke this when OAuth credentials are configured.
func RegisterOAuth(e *echo.Echo, o *handler.OAuthHandler) {
	g := e.Group("/api/oauth")
	g.GET("/google/login", o.Login)
	g.GET("/google/callback", o.Callback)
}

// RegisterForum registers the public browse endpoints, the
// authenticated write endpoints and the moderator queue/decision
// endpoints for posts and comments.
func RegisterForum(e *echo.Echo, p *handler.PostHandler, cm *handler.CommentHandler) {
	// Public browse. Anonymous callers see approved content only; the
	// handlers widen visibility for authors and moderators themselves.
	e.GET("/api/forum/categories", p.ListCategories)
	e.GET("/api/forum/posts", p.List)
	e.GET("/api/forum/posts/:id", p.Get)
	e.GET("/api/forum/posts/:id/comments", cm.ListForPost)

	auth := e.Group("/api/forum", middleware.RequireAuth())
	auth.POST("/posts", p.Create)
	auth.PUT("/posts/:id", p.Update)
	auth.DELETE("/posts/:id", p.Delete)
	auth.POST("/posts/:id/comments", cm.Create)
	auth.PUT("/comments/:id", cm.Update)
	auth.DELETE("/comments/:id", cm.Delete)
	auth.POST("/comments/:id/rate", cm.Rate)

	mod := e.Group("/api/forum", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleModerator, model.RoleAdmin))
	mod.GET("/posts/pending", p.ListPending)
	mod.GET("/comments/pending", cm.ListPending)
	mod.POST("/posts/:id/approve", p.Approve)
	mod.POST("/posts/:id/reject", p.Reject)
	mod.POST("/comments/:id/approve", cm.Approve)
	mod.POST("/comments/:id/reject", cm.Reject)
}

// RegisterGallery registers the public carousel endpoint (response
// cached in Redis) and the admin-only curation surface.
func RegisterGallery(e *echo.Echo, g *handler.GalleryHandler, cache config.CacheConfig, rdb *redis.Client) {
	e.GET(handler.ActiveGalleryPath, g.Active, middleware.NewRedisCache(cache, rdb))

	admin := e.Group("/api/gallery", middleware.RequireAuth(),
		middleware.RequireRole(model.RoleAdmin))
	admin.GET("/images", g.ListImages)
	admin.POST("/images", g.CreateImage)
	admin.DELETE("/images/:id", g.DeleteImage)
	admin.GET("/collections", g.ListCollections)
	admin.POST("/collections", g.CreateCollection)
	admin.GET("/collections/:id", g.GetCollection)
	admin.DELETE("/collections/:id", g.DeleteCollection)
	admin.POST("/collections/:id/activate", g.Activate)
	admin.POST("/collections/:id/items", g.AddItem)
	admin.DELETE("/collections/:id/items/:imageID", g.RemoveItem)
	admin.POST("/collections/:id/reorder", g.Reorder)
}

// RegisterShop registers the public catalog (cached) and the
// authenticated purchase flow.
func RegisterShop(e *echo.Echo, s *handler.ShopHandler, cache config.CacheConfig, rdb *redis.Client) {
	e.GET("/api/shop/players", s.ListPlayers, middleware.NewRedisCache(cache, rdb))

	auth := e.Group("/api/purchases", middleware.RequireAuth())
	auth.GET("", s.ListPurchases)
	auth.POST("", s.CreatePurchase)
	auth.GET("/:id", s.GetPurchase)
	auth.POST("/:id/pay", s.Pay)
}
