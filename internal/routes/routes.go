package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/asabsob/trustedlinks/internal/config"
	"github.com/asabsob/trustedlinks/internal/handlers"
	"github.com/asabsob/trustedlinks/internal/middleware"
	"github.com/asabsob/trustedlinks/internal/services"
	"github.com/asabsob/trustedlinks/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, store storage.Store, otpService *services.OTPService, activationService *services.ActivationService, log zerolog.Logger) {
	healthHandler := handlers.NewHealthHandler("1.0.0")
	whatsappHandler := handlers.NewWhatsAppHandler(otpService, log)
	businessHandler := handlers.NewBusinessHandler(activationService, store, log)
	adminHandler := handlers.NewAdminHandler(store, cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, log)
	analyticsHandler := handlers.NewAnalyticsHandler(store, log)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// OTP endpoints are rate limited per client IP; a burst covers the
	// request + one quick resend, then sends trickle.
	otpLimiter := middleware.NewRateLimiter(rate.Every(20*time.Second), 3)

	whatsapp := api.Group("/whatsapp")
	whatsapp.Post("/request-otp", otpLimiter.Handler(), whatsappHandler.RequestOTP)
	whatsapp.Post("/resend-otp", otpLimiter.Handler(), whatsappHandler.ResendOTP)
	whatsapp.Post("/verify-otp", whatsappHandler.VerifyOTP)

	api.Post("/business/activate", businessHandler.Activate)
	api.Get("/businesses", businessHandler.List)
	api.Get("/search", businessHandler.Search)
	api.Get("/business/:id", businessHandler.Get)
	api.Get("/plans", businessHandler.Plans)

	admin := api.Group("/admin")
	admin.Post("/login", adminHandler.Login)
	admin.Get("/notifications", middleware.RequireAdmin(cfg.JWTSecret), adminHandler.ListNotifications)
	admin.Post("/notifications", middleware.RequireAdmin(cfg.JWTSecret), adminHandler.CreateNotification)
	admin.Get("/stats", middleware.RequireAdmin(cfg.JWTSecret), analyticsHandler.Stats)
}
