package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"promptmarket/internal/client"
	"promptmarket/internal/config"
	"promptmarket/internal/repository"
	"promptmarket/internal/server"
	"promptmarket/internal/service"
	"promptmarket/internal/suppress"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	providerClient := client.NewProviderClient(&cfg.Provider)

	var suppressor suppress.Suppressor
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		suppressor = suppress.NewRedisSuppressor(rdb, cfg.ViewSuppressionTTL)
	} else {
		suppressor = suppress.NewMemorySuppressor(cfg.ViewSuppressionTTL)
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	checkoutService := service.NewCheckoutService(
		db, providerClient, cfg.BaseURL,
		productRepo,
		orderRepo,
		purchaseRepo,
		ledgerRepo,
		webhookEventRepo,
		logger,
	)
	entitlementService := service.NewEntitlementService(productRepo, purchaseRepo)
	engagementService := service.NewEngagementService(
		db,
		productRepo,
		purchaseRepo,
		reviewRepo,
		suppressor,
		logger,
	)
	sellerService := service.NewSellerService(ledgerRepo, productRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(checkoutService, entitlementService, engagementService, sellerService)

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownTimer := time.AfterFunc(30*time.Second, func() {
		logger.Fatal("graceful shutdown timed out")
	})
	defer shutdownTimer.Stop()

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func buildLogger(cfg *config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
