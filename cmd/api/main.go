package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumibyte/coupon-draw-service/internal/cache"
	"github.com/lumibyte/coupon-draw-service/internal/config"
	"github.com/lumibyte/coupon-draw-service/internal/handler"
	"github.com/lumibyte/coupon-draw-service/internal/repository"
	"github.com/lumibyte/coupon-draw-service/internal/service"
	"github.com/lumibyte/coupon-draw-service/internal/validator"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	for _, warning := range cfg.WarnIfDefaultCredentials() {
		log.Warn().Msg(warning)
	}

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize the cache client
	cacheClient := cache.New(cfg.Cache.Addr(), cfg.Cache.Password, cfg.Cache.DB)
	if err := cacheClient.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to cache")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Coupon Draw Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	// Initialize validator, registering the custom notblank tag used by DTOs
	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	campaignRepo := repository.NewCampaignRepository(pool)
	couponTypeRepo := repository.NewCouponTypeRepository()
	couponRepo := repository.NewCouponRepository(pool)
	drawRepo := repository.NewDrawRepository()

	// Services
	userService := service.NewUserService(userRepo)
	campaignService := service.NewCampaignService(pool, campaignRepo)
	drawService := service.NewDrawService(pool, userRepo, campaignRepo, couponTypeRepo, couponRepo, drawRepo, cacheClient)
	redeemService := service.NewRedeemService(couponRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService, validate)
	campaignHandler := handler.NewCampaignHandler(campaignService, validate)
	drawHandler := handler.NewDrawHandler(drawService, validate)
	redeemHandler := handler.NewRedeemHandler(redeemService, validate)
	healthHandler := handler.NewHealthHandler(aggregatePinger{db: pool, cache: cacheClient})

	// Routes
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/campaign", campaignHandler.CreateCampaign)
	app.Get("/campaign/:id", campaignHandler.GetCampaign)

	app.Post("/draw", drawHandler.Draw)
	app.Post("/redeem", redeemHandler.Redeem)

	app.Get("/user", userHandler.ListUsers)
	app.Post("/user", userHandler.CreateUser)
	app.Delete("/user/:id", userHandler.DeleteUser)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database and cache connections AFTER server shutdown
	log.Info().Msg("closing database and cache connections...")
	pool.Close()
	if err := cacheClient.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing cache connection")
	}
	log.Info().Msg("server stopped")
}

// aggregatePinger reports unhealthy if either the durable store or the
// cache is unreachable.
type aggregatePinger struct {
	db    handler.Pinger
	cache handler.Pinger
}

func (a aggregatePinger) Ping(ctx context.Context) error {
	if err := a.db.Ping(ctx); err != nil {
		return err
	}
	return a.cache.Ping(ctx)
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
