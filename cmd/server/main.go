package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/database"
	"github.com/iliyamo/community-hub/internal/handler"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/router"
)

func main() {
	// .env is a dev convenience; a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Bootstrap(ctx, db); err != nil {
		cancel()
		log.Fatalf("bootstrap schema: %v", err)
	}
	if err := database.Seed(ctx, db); err != nil {
		cancel()
		log.Fatalf("seed data: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables response caching and
	// drops the rate limiter to its in-process fallback.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; caching disabled, rate limiting local")
	}
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	categories := repository.NewCategoryRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	ratings := repository.NewRatingRepo(db)
	gallery := repository.NewGalleryRepo(db)
	shop := repository.NewShopRepo(db)

	authH := handler.NewAuthHandler(cfg, users, sessions)
	postH := handler.NewPostHandler(cfg, posts, categories)
	commentH := handler.NewCommentHandler(cfg, posts, comments, ratings)
	galleryH := handler.NewGalleryHandler(gallery, cacheCfg, rdb)
	shopH := handler.NewShopHandler(shop)

	// Background audit trail fed by the moderation and purchase queues.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	// Identity resolution and anti-forgery run on every request; route
	// groups add RequireAuth / role gates on top.
	e.Use(middleware.Identity(cfg, sessions, users))
	e.Use(middleware.CSRF(cfg.CSRFExemptPrefix))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, rlCfg, rdb)
	if cfg.OAuthEnabled() {
		router.RegisterOAuth(e, handler.NewOAuthHandler(cfg, authH))
	}
	router.RegisterForum(e, postH, commentH)
	router.RegisterGallery(e, galleryH, cacheCfg, rdb)
	router.RegisterShop(e, shopH, cacheCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// errorHandler renders every error the framework surfaces (unknown
// routes, method mismatches, panics) in the same {"error": msg} shape
// the handlers use, without leaking internals.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "internal error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
	} else {
		c.Logger().Error(err)
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
