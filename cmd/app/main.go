package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"raffle-tool-backend/internal/common/cache"
	"raffle-tool-backend/internal/common/clock"
	"raffle-tool-backend/internal/common/config"
	"raffle-tool-backend/internal/common/logger"
	"raffle-tool-backend/internal/common/middleware"
	"raffle-tool-backend/internal/common/phone"
	participantRepo "raffle-tool-backend/internal/features/participant/repository/postgres"
	participantService "raffle-tool-backend/internal/features/participant/service"
	paymentHTTP "raffle-tool-backend/internal/features/payment/delivery/http"
	paymentRepo "raffle-tool-backend/internal/features/payment/repository/postgres"
	paymentService "raffle-tool-backend/internal/features/payment/service"
	sellerRepo "raffle-tool-backend/internal/features/seller/repository/postgres"
	sellerService "raffle-tool-backend/internal/features/seller/service"
	ticketHTTP "raffle-tool-backend/internal/features/ticket/delivery/http"
	ticketRepo "raffle-tool-backend/internal/features/ticket/repository/postgres"
	ticketService "raffle-tool-backend/internal/features/ticket/service"
	"raffle-tool-backend/internal/platform/postgres"
	"raffle-tool-backend/internal/platform/redis"
	"raffle-tool-backend/internal/platform/storage"
)

func main() {
	cfg := config.Load()
	logger.Init("raffle-tool-backend", cfg.Debug)

	ctx := context.Background()

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if err := postgresClient.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}
	logger.Info().Msg("Database connection established")

	redisClient, err := redis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	cacheService := cache.NewCacheService(redisClient)

	proofStore, err := storage.NewLocalStore(cfg.Storage.ProofDir, cfg.Storage.ProofBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare proof storage")
	}

	db := postgresClient.GetDB()
	sellerRepository := sellerRepo.NewPostgresRepository(db)
	participantRepository := participantRepo.NewPostgresRepository(db)
	ticketRepository := ticketRepo.NewPostgresRepository(db)
	fraudRepository := paymentRepo.NewPostgresRepository(db)

	systemClock := clock.NewSystem()
	normalizer := phone.New(cfg.Raffle.CountryCode, cfg.Raffle.TrunkPrefix)

	sellerSvc := sellerService.NewSellerService(sellerRepository)
	participantSvc := participantService.NewParticipantService(participantRepository, normalizer)
	inventorySvc := ticketService.NewInventoryService(ticketRepository, participantSvc, sellerSvc,
		cacheService, systemClock, cfg, logger.With("inventory"))
	paymentSvc := paymentService.NewPaymentService(inventorySvc, participantSvc, sellerSvc,
		fraudRepository, proofStore, paymentService.LogNotifier{Logger: logger.With("voucher")},
		systemClock, logger.With("payment"))

	sweep := ticketService.NewSweepService(ticketRepository, cacheService, systemClock,
		cfg.Raffle.SweepInterval, logger.With("sweep"))
	sweep.Start()
	defer sweep.Stop()

	logger.Info().Msg("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	ticketHTTP.NewTicketHandler(inventorySvc).RegisterRoutes(v1)
	paymentHTTP.NewPaymentHandler(paymentSvc).RegisterRoutes(v1)

	// Uploaded transfer proofs are public, immutable files.
	router.Static("/proofs", proofStore.Dir())

	registerProbes(router, postgresClient, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func registerProbes(router *gin.Engine, postgresClient *postgres.Client, redisClient *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "raffle-tool-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "postgres unavailable",
			})
			return
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "redis unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "raffle-tool-backend",
		})
	})
}
