package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/nano-midea/notification/internal/handlers"
	"github.com/anonto42/nano-midea/notification/internal/repositories"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, dispatcher handlers.Dispatcher, notifRepo repositories.NotificationRepository, registry *prometheus.Registry) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Post interaction notifications + read API
	notificationGroup := e.Group("/notification")
	notificationHandler := handlers.NewNotificationHandler(dispatcher, notifRepo)
	notificationHandler.RegisterNotificationRoutes(notificationGroup)
	log.Info().Msg("Notification routes configured.")

	// User lifecycle and post notifications
	notifyGroup := e.Group("/notify")
	userNotifyHandler := handlers.NewUserNotifyHandler(dispatcher)
	userNotifyHandler.RegisterUserNotifyRoutes(notifyGroup)
	postNotifyHandler := handlers.NewPostNotifyHandler(dispatcher)
	postNotifyHandler.RegisterPostNotifyRoutes(notifyGroup)
	log.Info().Msg("User and post notify routes configured.")

	// Admin notifications
	adminGroup := e.Group("/admin")
	adminNotifyHandler := handlers.NewAdminNotifyHandler(dispatcher)
	adminNotifyHandler.RegisterAdminNotifyRoutes(adminGroup)
	log.Info().Msg("Admin notify routes configured.")

	log.Info().Msg("All routes configured.")
}
