package response

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"storeapi/internal/core/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ResponseCacheConfig configuration for response cache
type ResponseCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

type ResponseCache struct {
	cache   *cache.Cache
	config  map[string]ResponseCacheConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

// CachedResponse stores a full response for replay
type CachedResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Timestamp  time.Time           `json:"timestamp"`
}

func NewResponseCache(logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	c := cache.New(5*time.Minute, 10*time.Minute)

	configs := map[string]ResponseCacheConfig{
		"/api/address": {
			TTL:     3 * time.Second,
			Enabled: true,
		},
		"/api/user/user-data": {
			TTL:     1 * time.Second,
			Enabled: true,
		},
		"default": {
			TTL:     1 * time.Second,
			Enabled: false,
		},
	}

	return &ResponseCache{
		cache:   c,
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("storeapi/response-cache")

	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config, exists := rc.config[path]
		if !exists {
			config = rc.config["default"]
		}

		if !config.Enabled {
			c.Next()
			return
		}

		// Only cache for authenticated callers. Without a verified user id
		// the key would have to come from request headers, which the caller
		// controls, so anonymous traffic bypasses the cache entirely.
		userID, authenticated := c.Get("x-user-id")
		if !authenticated {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c, path, userID)

		if cachedResp, found := rc.cache.Get(cacheKey); found {
			cached := cachedResp.(CachedResponse)

			if time.Since(cached.Timestamp) < config.TTL {
				_, span := tracer.Start(c.Request.Context(), "cache.response.hit")
				span.SetAttributes(
					attribute.String("cache.key", cacheKey),
					attribute.String("cache.path", path),
					attribute.String("cache.age", time.Since(cached.Timestamp).String()),
					attribute.Int("cache.status_code", cached.StatusCode),
					attribute.Int("cache.body_size", len(cached.Body)),
				)
				span.End()

				if rc.metrics != nil {
					rc.metrics.RecordCacheHit(c.Request.Context(), path)
				}

				rc.logger.Debug("Cache hit",
					zap.String("path", path),
					zap.String("cache_key", cacheKey),
					zap.Duration("age", time.Since(cached.Timestamp)))

				for key, values := range cached.Headers {
					for _, value := range values {
						c.Header(key, value)
					}
				}

				c.Header("X-Cache", "HIT")
				c.Header("X-Cache-Age", fmt.Sprintf("%.0f", time.Since(cached.Timestamp).Seconds()))

				c.Data(cached.StatusCode, "application/json", cached.Body)
				c.Abort()
				return
			}

			rc.cache.Delete(cacheKey)
		}

		ctx, span := tracer.Start(c.Request.Context(), "cache.response.miss")
		span.SetAttributes(
			attribute.String("cache.key", cacheKey),
			attribute.String("cache.path", path),
		)
		defer span.End()

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		rc.logger.Debug("Cache miss",
			zap.String("path", path),
			zap.String("cache_key", cacheKey))

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if writer.statusCode >= 200 && writer.statusCode < 300 {
			cachedResp := CachedResponse{
				StatusCode: writer.statusCode,
				Headers:    writer.Header(),
				Body:       writer.body.Bytes(),
				Timestamp:  time.Now(),
			}

			rc.cache.Set(cacheKey, cachedResp, config.TTL)

			c.Header("X-Cache", "MISS")
		}
	}
}

// generateCacheKey includes path, query and the verified user id so users
// never see each other's cached payloads.
func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string, userID any) string {
	identity := fmt.Sprintf("user_%v", userID)

	keyParts := []string{path, identity}

	if c.Request.URL.RawQuery != "" {
		keyParts = append(keyParts, c.Request.URL.RawQuery)
	}

	keyString := strings.Join(keyParts, "|")
	hash := md5.Sum([]byte(keyString))

	// The identity stays readable in the key so invalidation can match it
	return fmt.Sprintf("cache:%s:%s:%x", path, identity, hash)
}

// InvalidateCache drops cached entries for one user and path, called after
// writes so reads never return stale data past the TTL.
func (rc *ResponseCache) InvalidateCache(userID int, path string) {
	keys := rc.cache.Items()

	for key := range keys {
		if strings.Contains(key, fmt.Sprintf("user_%d", userID)) && strings.Contains(key, path) {
			rc.cache.Delete(key)
			rc.logger.Debug("Cache invalidated",
				zap.String("key", key),
				zap.Int("user_id", userID),
				zap.String("path", path))
		}
	}
}

func (rc *ResponseCache) InvalidateAllCache() {
	rc.cache.Flush()
	rc.logger.Info("All cache invalidated")
}

func (rc *ResponseCache) SetConfig(path string, config ResponseCacheConfig) {
	rc.config[path] = config
}

func (rc *ResponseCache) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})

	stats["active_entries"] = rc.cache.ItemCount()
	stats["configs"] = len(rc.config)

	return stats
}

// responseWriter buffers the body so it can be stored after the handler runs
type responseWriter struct {
	gin.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
