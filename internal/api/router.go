package api

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/internal/api/handlers"
	"github.com/amiyamandal-dev/blogapi/internal/api/middleware"
	"github.com/amiyamandal-dev/blogapi/internal/config"
	"github.com/amiyamandal-dev/blogapi/internal/metrics"
	"github.com/amiyamandal-dev/blogapi/internal/web"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// Router sets up the HTTP router with all routes and middleware
type Router struct {
	engine         *gin.Engine
	articleHandler *handlers.ArticleHandler
	healthHandler  *handlers.HealthHandler
	staticHandler  *web.StaticHandler
	metrics        *metrics.Registry
	cfg            *config.Config
	logger         *logger.Logger
}

// NewRouter creates a new router. staticHandler may be nil when no
// front-end is served.
func NewRouter(
	articleHandler *handlers.ArticleHandler,
	healthHandler *handlers.HealthHandler,
	staticHandler *web.StaticHandler,
	registry *metrics.Registry,
	cfg *config.Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		articleHandler: articleHandler,
		healthHandler:  healthHandler,
		staticHandler:  staticHandler,
		metrics:        registry,
		cfg:            cfg,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.cfg.Server.Mode)

	r.engine = gin.New()

	// Global middleware
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.LoggerMiddleware(r.logger))

	// Health and metrics endpoints (no rate limiting)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/health/live", r.healthHandler.Liveness)
	r.engine.GET("/metrics", handlers.Metrics(r.metrics))

	apiGroup := r.engine.Group("/api")
	apiGroup.Use(middleware.RateLimitMiddleware(
		r.cfg.RateLimit.RequestsPerMinute,
		r.cfg.RateLimit.Burst,
	))
	{
		articles := apiGroup.Group("/articles")
		articles.GET("/:name", r.articleHandler.GetByName)
		articles.POST("/:name/upvote", r.articleHandler.Upvote)
		articles.POST("/:name/add-comment", r.articleHandler.AddComment)
	}

	if r.staticHandler != nil {
		r.engine.NoRoute(r.staticHandler.Serve)
	}

	return r.engine
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	if r.engine == nil {
		return r.Setup()
	}
	return r.engine
}
