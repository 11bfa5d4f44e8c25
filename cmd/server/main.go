package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tapmove.backend/internal/config"
	"tapmove.backend/internal/infrastructure/datasources"
	"tapmove.backend/internal/infrastructure/jobs"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/internal/infrastructure/repositories"
	"tapmove.backend/internal/interfaces/http/handlers"
	"tapmove.backend/internal/interfaces/http/middleware"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/logger"
	"tapmove.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) { return datasources.Open(cfg) }
	runServer  = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis backs rate limiting and idempotency replay; both fail open, so
	// a missing Redis degrades rather than blocks startup.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, throttling and idempotency disabled", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := datasources.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(context.Background(), "Database ready", zap.String("driver", cfg.Database.Driver))

	// Initialize repositories
	paymentRepo := repositories.NewPaymentRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	// Ledger client; the gas station is nil when unconfigured and senders
	// pay their own gas
	sponsor := ledger.NewGasStation(cfg.Sponsor.URL, cfg.Sponsor.AccessKey, cfg.Ledger.SubmitTimeout)
	ledgerClient := ledger.NewClient(ledger.Config{
		Network:       cfg.Ledger.Network,
		NodeURL:       cfg.Ledger.NodeURL,
		FaucetURL:     cfg.Ledger.FaucetURL,
		ExplorerURL:   cfg.Ledger.ExplorerURL,
		ModuleAddress: cfg.Ledger.ModuleAddress,
		CoinType:      cfg.Ledger.CoinType,
		SubmitTimeout: cfg.Ledger.SubmitTimeout,
	}, sponsor)

	// Initialize usecases
	notifier := usecases.NewWebhookNotifier(merchantRepo, cfg.Webhook.Timeout)
	paymentUsecase := usecases.NewPaymentUsecase(paymentRepo, merchantRepo, txRepo, ledgerClient, notifier, usecases.PaymentConfig{
		DefaultTTL:       cfg.Payment.DefaultTTL,
		MinExpirySeconds: cfg.Payment.MinExpirySeconds,
		MaxExpirySeconds: cfg.Payment.MaxExpirySeconds,
		URIScheme:        cfg.Payment.URIScheme,
		WebBaseURL:       cfg.Payment.WebBaseURL,
		Decimals:         cfg.Payment.Decimals,
	})
	merchantUsecase := usecases.NewMerchantUsecase(merchantRepo, paymentRepo, txRepo)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewPaymentExpiryJob(paymentRepo, notifier, paymentUsecase, jobs.ExpiryConfig{
		Interval:        cfg.Sweeper.Interval,
		CleanupInterval: cfg.Sweeper.CleanupInterval,
		RetentionAge:    cfg.Sweeper.RetentionAge,
		StuckAfter:      cfg.Sweeper.StuckAfter,
	})
	go expiryJob.Start(ctx)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase)
	merchantHandler := handlers.NewMerchantHandler(merchantUsecase)
	walletHandler := handlers.NewWalletHandler(ledgerClient)
	healthHandler := handlers.NewHealthHandler(expiryJob, ledgerClient.NetworkConfig())

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	registerRoutes(r, routeDeps{
		paymentHandler:  paymentHandler,
		merchantHandler: merchantHandler,
		walletHandler:   walletHandler,
		healthHandler:   healthHandler,
		authMiddleware:  middleware.AuthMiddleware(merchantUsecase),
		rateLimit: middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	log.Printf("TapMove backend starting on port %s", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
