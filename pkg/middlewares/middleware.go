package middlewares

import (
	"strconv"
	"time"

	"storeapi/internal/core/telemetry"
	"storeapi/pkg"
	"storeapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
			duration,
		)
	}
}

func SetupGinMiddleware(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *config.LokiLogger) {
	SetupGinMiddlewareWithConfig(router, serviceName, metrics, logger, config.GetDefaultConfig())
}

func SetupGinMiddlewareWithConfig(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) {
	httpsEnforcer := config.NewHTTPSEnforcer(logger.Logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(serviceName))

	router.Use(LoggingMiddleware(logger))

	if cfg.RateLimitEnabled {
		rateLimiter := config.NewRateLimiter(logger.Logger.Logger, pkg.GetClientIP)

		for path, limit := range cfg.RateLimitConfigs {
			rateLimiter.SetConfig(path, config.RateLimitEndpointConfig{
				Requests: limit.Requests,
				Window:   limit.Window,
				KeyFunc:  pkg.GetClientIP,
			})
		}

		rateLimiter.OnHit(func(c *gin.Context, path, keyType string) {
			metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
		})
		rateLimiter.OnAllowed(func(c *gin.Context, path, keyType string) {
			metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		})

		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.Use(MetricsMiddleware(metrics))
}
