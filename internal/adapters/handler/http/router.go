package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDependencies struct {
	// AuthHandler and TokenService are nil when the API runs without auth.
	AuthHandler     *AuthHandler
	TokenService    *services.TokenService
	HabitHandler    *HabitHandler
	TrackingHandler *TrackingHandler
	StatsHandler    *StatsHandler
	AdminHandler    *AdminHandler

	Store          Pinger
	Redis          *redis.Client
	Metrics        *metrics.Recorder
	Logger         *zap.Logger
	RateLimit      int
	AllowedOrigins []string
	StartTime      time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	router.Use(middleware.Recovery(deps.Logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(deps.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, time.Minute, deps.Logger))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "connected"
		if deps.Store == nil || deps.Store.Ping(ctx) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(apiV1)
	}

	protected := apiV1.Group("")
	if deps.TokenService != nil {
		protected.Use(middleware.AuthMiddleware(deps.TokenService))
	}
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.TrackingHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
		if deps.AdminHandler != nil {
			deps.AdminHandler.RegisterRoutes(protected)
		}
	}

	return router
}
