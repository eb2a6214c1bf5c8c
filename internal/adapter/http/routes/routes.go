package routes

import (
	"net/http"

	"storeapi/internal/adapter/http/handler"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
	"storeapi/pkg/middlewares"
	"storeapi/pkg/response"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AddressHandler *handler.AddressHandler
	Authenticator  *middleware.Authenticator
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger, appConfig *config.AppConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middlewares.SetupGinMiddlewareWithConfig(router, "storeapi", metrics, logger, appConfig)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware(appConfig.FrontendDomain))
	router.Use(middleware.CurrentMiddleware())

	if handlers.Authenticator != nil {
		router.Use(handlers.Authenticator.Authenticate())
	}

	// The cache keys by the identity Authenticate resolves, so it has to sit
	// behind it in the chain.
	responseCache := response.NewResponseCache(logger.Logger.Logger, metrics)
	router.Use(responseCache.CacheMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupUserRoutes(router, handlers)
	setupAddressRoutes(router, handlers)

	return router
}

func setupUserRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.AuthHandler == nil {
		return
	}

	user := router.Group("/api/user")
	{
		user.POST("", handlers.AuthHandler.Register)
		user.POST("/login", handlers.AuthHandler.Login)
		user.POST("/logout", handlers.AuthHandler.Logout)
		user.POST("/reset-password", handlers.AuthHandler.ResetPassword)
		user.PUT("/change-password/:token", handlers.AuthHandler.ChangePassword)
	}

	if handlers.UserHandler == nil {
		return
	}

	admin := user.Group("/user-data")
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.GET("", handlers.UserHandler.GetUserData)
		admin.PUT("", handlers.UserHandler.UpdateUser)
	}
}

func setupAddressRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.AddressHandler == nil {
		return
	}

	address := router.Group("/api/address")
	address.Use(middleware.RequireAuth())
	{
		address.GET("", handlers.AddressHandler.GetUserAddresses)
		address.GET("/:id", handlers.AddressHandler.GetAddress)
		address.POST("", handlers.AddressHandler.AddAddress)
		address.PUT("/:id", handlers.AddressHandler.UpdateAddress)
		address.DELETE("/:id", handlers.AddressHandler.DeleteAddress)
	}
}

// corsMiddleware reflects the configured storefront origin. Credentialed
// cookie auth rules out the wildcard origin.
func corsMiddleware(frontendDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := frontendDomain

		if origin == "" {
			origin = c.GetHeader("Origin")
		}

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware(""))
	router.Use(middleware.CurrentMiddleware())

	if handlers.Authenticator != nil {
		router.Use(handlers.Authenticator.Authenticate())
	}

	setupUserRoutes(router, handlers)
	setupAddressRoutes(router, handlers)

	return router
}
