package http

import (
	"taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/core/telemetry"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter builds the gin engine. metrics may be nil, in which case request
// metrics are not recorded.
func NewRouter(cfg *config.AppConfig, container *Container, logger *config.Logger, metrics *telemetry.AppMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.ContextWithFallback = true

	router.Use(
		middleware.ErrorMasking(cfg.IsProduction()),
		middleware.Recovery(logger),
		middleware.HTTPSMiddleware(cfg.EnforceHTTPS, logger.Logger.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		otelgin.Middleware(cfg.ServiceName),
		middleware.CurrentMiddleware(),
		middleware.LoggingMiddleware(logger),
	)

	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	router.Use(middleware.Authentication(container.AuthService))

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitConfigs, logger.Logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.GET("/health", container.HealthHandler.Health)

	public := router.Group("/auth")
	{
		public.POST("/register", container.AuthHandler.Register)
		public.POST("/login", container.AuthHandler.Login)
		public.POST("/refresh", container.AuthHandler.Refresh)
	}

	private := router.Group("/", middleware.RequireAuth())
	{
		private.GET("/me", container.UserHandler.Me)
		private.PATCH("/me", container.UserHandler.UpdateMe)

		private.GET("/tasks", container.TaskHandler.List)
		private.POST("/tasks", container.TaskHandler.Create)
		private.GET("/tasks/:id", container.TaskHandler.Get)
		private.PATCH("/tasks/:id", container.TaskHandler.Update)
		private.DELETE("/tasks/:id", container.TaskHandler.Delete)

		private.GET("/subscriptions/tasks", container.SubscriptionHandler.Tasks)
	}

	router.NoRoute(func(c *gin.Context) {
		helper.SendNotFoundError(c, "Route not found")
	})

	return router
}
