package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-auth-service/internal/config"
	"user-auth-service/internal/delivery/http/handler"
	"user-auth-service/internal/infrastructure/database"
	"user-auth-service/internal/logger"
	"user-auth-service/internal/mailer"
	"user-auth-service/internal/metrics"
	"user-auth-service/internal/middleware"
	"user-auth-service/internal/usecase/user"
)

const healthCheckTimeout = 2 * time.Second

// SetupRoutes wires the store, mailer and metrics registry into a gin engine.
// reg receives the service collectors and backs /metrics.
func SetupRoutes(cfg *config.Config, store database.Store, m mailer.Mailer, reg *prometheus.Registry, opts ...user.Option) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.RegisterMetrics(reg)

	router := gin.New()

	// Order: recovery, request ID, logging, security headers, CORS, request size limit, metrics.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware("/health", "/metrics"))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := store.Health(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	userService := user.NewService(store.Users(), m, cfg, opts...)
	userHandler := handler.NewUserHandler(userService)

	userHandler.RegisterRoutes(router)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	userHandler.RegisterProfileRoutes(protected)

	logger.Info("All routes initialized",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("mail_provider", cfg.Mail.Provider),
	)
	return router
}
