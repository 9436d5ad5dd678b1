package routes

import (
	"net/http"
	"time"

	"queueflow/internal/audit"
	"queueflow/internal/queues"
	"queueflow/internal/shared/config"
	"queueflow/internal/shared/database"
	"queueflow/internal/shared/middleware"
	"queueflow/internal/shared/utils/response"
	"queueflow/internal/shops"
	"queueflow/pkg/cache"
	"queueflow/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router wires all application routes and their dependencies
type Router struct {
	engine    *gin.Engine
	cfg       *config.Config
	db        *database.DB
	publisher audit.Publisher

	estimateRefresher *queues.EstimateRefresher
}

// NewRouter creates the application router
func NewRouter(cfg *config.Config, db *database.DB, publisher audit.Publisher) *Router {
	gin.SetMode(cfg.GinMode)
	engine := gin.New()

	return &Router{
		engine:    engine,
		cfg:       cfg,
		db:        db,
		publisher: publisher,
	}
}

// Setup configures middleware and registers all routes
func (r *Router) Setup() *gin.Engine {
	r.engine.Use(middleware.RequestLogger())
	r.engine.Use(gin.Recovery())
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if r.db.Redis != nil && r.cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRateLimiter(r.db.Redis, &ratelimit.Config{
			Enabled:         r.cfg.RateLimit.Enabled,
			WindowDuration:  r.cfg.RateLimit.WindowDuration,
			DefaultRequests: r.cfg.RateLimit.DefaultRequests,
			PublicRequests:  r.cfg.RateLimit.PublicRequests,
			StaffRequests:   r.cfg.RateLimit.StaffRequests,
			BatchRequests:   r.cfg.RateLimit.BatchRequests,
			HealthRequests:  r.cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  r.cfg.RateLimit.WhitelistedIPs,
		})
		r.engine.Use(ratelimit.Middleware(limiter))
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes registers liveness and dependency health endpoints
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/ping", func(c *gin.Context) {
		response.RespondJSON(c, "success", http.StatusOK, "pong", nil, nil)
	})

	r.engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			response.RespondJSON(c, "error", http.StatusServiceUnavailable, "unhealthy", nil, err.Error())
			return
		}
		response.RespondJSON(c, "success", http.StatusOK, "healthy", nil, nil)
	})
}

// setupAPIRoutes builds the dependency graph and registers the v1 API
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group(r.cfg.GetAPIBasePath())

	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.Redis)
	}

	shopsRepo := shops.NewRepository(r.db.PostgreSQL)

	queueRepo := queues.NewRepository(r.db.PostgreSQL, r.db.Redis)
	queueService := queues.NewService(queueRepo, shopsRepo, r.publisher, cacheService, queues.ServiceConfig{
		DefaultAvgServiceMinutes: r.cfg.Queue.DefaultAvgServiceMinutes,
		MaxPageLimit:             r.cfg.Queue.MaxPageLimit,
	})
	queueController := queues.NewController(queueService)
	queues.RegisterRoutes(v1, queueController, r.cfg)

	r.estimateRefresher = queues.NewEstimateRefresher(queueService, queueRepo, r.cfg.Queue.EstimateRefreshInterval)
}

// StartJobs launches background jobs owned by the router's services
func (r *Router) StartJobs() {
	if r.estimateRefresher != nil {
		r.estimateRefresher.Start()
	}
}

// StopJobs stops background jobs and waits for them to finish
func (r *Router) StopJobs() {
	if r.estimateRefresher != nil {
		r.estimateRefresher.Stop()
	}
}
