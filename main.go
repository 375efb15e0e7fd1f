package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/asabsob/trustedlinks/database"
	"github.com/asabsob/trustedlinks/internal/config"
	"github.com/asabsob/trustedlinks/internal/gateway"
	"github.com/asabsob/trustedlinks/internal/jobs"
	"github.com/asabsob/trustedlinks/internal/models"
	"github.com/asabsob/trustedlinks/internal/routes"
	"github.com/asabsob/trustedlinks/internal/services"
	"github.com/asabsob/trustedlinks/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found - using environment variables")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	gw, err := buildGateway(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize messaging gateway")
	}

	proof := services.NewProofIssuer(cfg.JWTSecret)
	otpService := services.NewOTPService(store, gw, proof, cfg.OTPTTL, cfg.OTPCodeLength, log.Logger)
	activationService := services.NewActivationService(store, proof, cfg.RequireMetaReview, log.Logger)

	cleanup := jobs.NewCleanupJob(store, time.Minute, log.Logger)
	cleanup.Start()
	defer cleanup.Stop()

	app := fiber.New(fiber.Config{
		AppName: "Trusted Links Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, store, otpService, activationService, log.Logger)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.StorageDriver).
		Str("provider", cfg.Provider).
		Dur("otp_ttl", cfg.OTPTTL).
		Msg("Trusted Links backend starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage (not for production!)")
		return storage.NewMemoryStore(), nil

	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return storage.NewMongoStore(ctx, db)

	default: // config.StoragePostgres
		if err := database.Connect(); err != nil {
			return nil, err
		}
		if err := database.DB.AutoMigrate(
			&models.Business{},
			&models.OTP{},
			&models.Notification{},
		); err != nil {
			return nil, err
		}
		return storage.NewDatabaseStore(database.DB), nil
	}
}

func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Provider {
	case config.ProviderSimulated:
		log.Warn().Msg("OTP sends are SIMULATED - codes are logged, not transmitted")
		return gateway.NewSimulatedSender(log.Logger), nil

	case config.ProviderTwilio:
		return gateway.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, log.Logger)

	default: // config.ProviderMeta
		return gateway.NewMetaClient(cfg.WhatsAppAPIBase, cfg.WhatsAppPhoneID, cfg.WhatsAppToken, cfg.GatewayTimeout, log.Logger)
	}
}
