package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups everything mounted on the engine. Metrics may be nil.
type Handlers struct {
	Catalog Handler
	Booking Handler
	Payment Handler
	User    Handler
	Health  Handler
	Metrics *prometheus.Handler
}

type RouterConfig struct {
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
	// RateLimit is nil when rate limiting is disabled.
	RateLimit *middleware.RateLimiterConfig
	Compress  bool
	Mode      string
}

type Router struct {
	engine   *gin.Engine
	handlers Handlers
}

func NewRouter(handlers Handlers, config RouterConfig) *Router {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)
	validator.SetupGin()

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}
	engine.Use(
		middleware.Timeout(config.RequestTimeout),
		middleware.SizeLimit(config.MaxBodySize),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)
	if config.Compress {
		engine.Use(middleware.Compress(middleware.DefaultCompressConfig()))
	}
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	return r
}

// Setup mounts every route at the root path.
func (r *Router) Setup() {
	root := r.engine.Group("")

	root.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server running")
	})
	if r.handlers.Metrics != nil {
		root.GET("/metrics", r.handlers.Metrics.Handler())
	}

	for _, h := range []Handler{
		r.handlers.Health,
		r.handlers.Catalog,
		r.handlers.Booking,
		r.handlers.Payment,
		r.handlers.User,
	} {
		if h != nil {
			h.RegisterRoutes(root)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "route not found"})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
