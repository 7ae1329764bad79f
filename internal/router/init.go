package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/container"
	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
	"github.com/oksasatya/recipe-api/internal/interface/middleware"
	"github.com/oksasatya/recipe-api/internal/router/modules"
)

// New builds the gin engine with global middleware and every module.
func New(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	reg := NewRegistry(r, cfg.APIPrefix)
	reg.Use(middleware.Session(c.Sessions))
	if cfg.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(c.Logger))
	}
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules builds services and handlers from the container and registers
// their modules.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	users := application.NewUserService(c.Tx, c.Repos, c.Hasher, c.Logger)
	recipes := application.NewRecipeService(c.Tx, c.Repos, c.Events, c.Searcher, c.Logger)

	var authLimiter gin.HandlerFunc
	if cfg.RateLimitEnabled && c.Redis != nil {
		var allow middleware.AllowFunc
		if cfg.RateLimitBypassPrivate {
			allow = middleware.AllowPrivateIP()
		}
		authLimiter = middleware.RateLimit(c.Redis, cfg.RateLimitAuthMax, cfg.RateLimitWindow, middleware.KeyByIPAndPath(), allow)
	}

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(users, c.Sessions, c.Logger),
		handlers.NewUserHandler(users, c.Logger),
		authLimiter,
	))
	r.Add(modules.NewRecipeModule(handlers.NewRecipeHandler(recipes, c.Logger)))

	if cfg.DebugMetricsEnabled {
		var limiter gin.HandlerFunc
		if c.Redis != nil {
			limiter = middleware.RateLimit(c.Redis, 120, time.Minute, middleware.KeyByIP(), nil)
		}
		r.Add(modules.NewDebugModule(limiter))
	}
}
