package server

import (
	"github.com/gin-gonic/gin"

	"sentiment-scoop/internal/accounts"
	"sentiment-scoop/internal/sentiment"
	"sentiment-scoop/internal/services/health"
	"sentiment-scoop/internal/shared/config"
	"sentiment-scoop/internal/shared/metrics"
	"sentiment-scoop/internal/shared/server/middleware"
	"sentiment-scoop/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	AccountsHandler  *accounts.Handler
	SentimentHandler *sentiment.Handler
}

const (
	analyzeRateGroup = "ANALYZE"
	lookupRateGroup  = "LOOKUP"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())

	public := r.Group("")
	if deps.AccountsHandler != nil {
		deps.AccountsHandler.RegisterPublicRoutes(public)
	}

	protected := r.Group("", middleware.Auth(), analysisRateLimit())
	if deps.AccountsHandler != nil {
		deps.AccountsHandler.RegisterProtectedRoutes(protected)
	}
	if deps.SentimentHandler != nil {
		deps.SentimentHandler.RegisterRoutes(protected)
	}

	return r
}

// analysisRateLimit throttles the expensive analyze path harder than plain
// lookups. Lookups hit cache or storage only.
func analysisRateLimit() gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			analyzeRateGroup: {Rate: 0.2, Burst: 3},
			lookupRateGroup:  {Rate: 5, Burst: 20},
		},
		DefaultGroup: lookupRateGroup,
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/analyze" {
				return analyzeRateGroup
			}
			return lookupRateGroup
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
