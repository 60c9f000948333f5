package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/sadad_api/internal/cache"
	"github.com/GTDGit/sadad_api/internal/config"
	"github.com/GTDGit/sadad_api/internal/database"
	"github.com/GTDGit/sadad_api/internal/handler"
	"github.com/GTDGit/sadad_api/internal/middleware"
	"github.com/GTDGit/sadad_api/internal/repository"
	"github.com/GTDGit/sadad_api/internal/service"
	"github.com/GTDGit/sadad_api/internal/worker"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

// main is the entrypoint for the Sadad payment API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Bool("sandbox", cfg.Sadad.Sandbox).Msg("starting sadad api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := map[string]handler.Pinger{}

	// 3. Ledger database (optional)
	var ledger service.Ledger
	if cfg.DB.Enabled() {
		db, err := database.Connect(ctx, &cfg.DB)
		if err != nil {
			fatal("database connection failed", err)
		}
		defer db.Close()

		if err := database.Migrate(db.DB, "migrations"); err != nil {
			fatal("migration failed", err)
		}
		log.Info().Msg("migrations completed successfully")

		ledger = repository.NewInvoiceRepository(db)
		deps["database"] = handler.PingFunc(db.PingContext)
	} else {
		log.Warn().Msg("DB_HOST not set, invoice ledger disabled")
	}

	// 4. Rate cache (optional)
	var (
		rateCache  sadad.RateCache
		redisRates *cache.RateCache
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			fatal("redis connection failed", err)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		redisRates = cache.NewRateCache(redisClient, cfg.Sadad.RateCacheTTL)
		rateCache = redisRates
		deps["redis"] = redisClient
	}

	// 5. Sadad client
	sadadClient, err := service.NewSadadClient(&cfg.Sadad, rateCache, nil)
	if err != nil {
		fatal("sadad client setup failed", err)
	}
	defer sadadClient.Close()

	// 6. Services and handlers
	paymentSvc := service.NewPaymentService(sadadClient, ledger)
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(paymentSvc, cfg.Sadad.Sandbox, deps),
		Payment: handler.NewPaymentHandler(paymentSvc),
	}

	// 7. Middleware
	authLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	go authLimiter.Cleanup(ctx, 5*time.Minute)
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret, authLimiter)

	// 8. Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 9. Workers
	if redisRates != nil && cfg.Worker.RateSyncInterval > 0 {
		go worker.NewRateSyncWorker(sadadClient, redisRates, cfg.Worker.RateSyncInterval).Start(ctx)
	}

	// 10. HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Payment *handler.PaymentHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		v1.POST("/invoices", handlers.Payment.CreateInvoice)
		v1.GET("/invoices", handlers.Payment.ListInvoices)
		v1.GET("/invoices/:invoiceId", handlers.Payment.GetInvoice)
		v1.POST("/refunds", handlers.Payment.CreateRefund)

		v1.GET("/currencies", handlers.Payment.ListCurrencies)
		v1.GET("/currencies/convert", handlers.Payment.ConvertCurrency)

		v1.POST("/phone/validate", handlers.Payment.ValidatePhone)
	}
}

func fatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func setupLogger(env string) {
	level := zerolog.DebugLevel
	if env == "production" {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
