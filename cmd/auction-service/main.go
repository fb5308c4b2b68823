package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"openrtb-auction/internal/api/handlers"
	"openrtb-auction/internal/bidrequester"
	"openrtb-auction/internal/config"
	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/infrastructure/notification"
	redisinfra "openrtb-auction/internal/infrastructure/redis"
	"openrtb-auction/internal/infrastructure/websocket"
	"openrtb-auction/internal/services"
	"openrtb-auction/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting Auction Service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.GetConfigString())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Initialize the optional redis rate cache
	var rateCache domain.RateCache
	if cfg.Redis.Address != "" {
		rdb := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Connected to Redis", "address", cfg.Redis.Address)
		rateCache = redisinfra.NewRateCache(rdb, cfg.Rates.CacheTTL)
	}

	// Initialize the currency rate service
	rateService := services.NewRateService(cfg.Rates.FetchURL, rateCache, log)
	if cfg.Rates.File != "" {
		if err := rateService.LoadFromFile(cfg.Rates.File); err != nil {
			log.Error("Failed to load rate file", "error", err)
			os.Exit(1)
		}
	}
	if cfg.Rates.FetchURL != "" {
		if err := rateService.Refresh(ctx); err != nil {
			log.Warn("Initial rate refresh failed", "error", err)
		}
		if err := rateService.StartRefreshing(cfg.Rates.RefreshSpec); err != nil {
			log.Error("Failed to schedule rate refresh", "error", err)
			os.Exit(1)
		}
		defer rateService.Stop()
	}

	// Initialize the auction pipeline
	requester := bidrequester.New(bidrequester.Options{
		Timeout: cfg.Bidders.Timeout,
		Version: cfg.Bidders.Version,
	})
	sender := notification.NewHTTPSender(cfg.Auction.NotificationTimeout)
	hub := websocket.NewHub(log)
	runner := services.NewAuctionRunner(
		requester,
		cfg.Bidders.Endpoints,
		rateService,
		sender,
		hub,
		cfg.Auction.TargetCurrency,
		cfg.Auction.LossProcessing,
		log,
	)

	// Initialize HTTP handlers
	auctionHandler := handlers.NewAuctionHandler(runner, log)
	wsHandler := handlers.NewWebSocketHandler(hub, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.POST("/auctions", auctionHandler.RunAuction)
	e.GET("/healthz", auctionHandler.Health)
	e.GET("/ws/results", wsHandler.HandleConnection)

	// Start server
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()
	log.Info("Auction service started", "host", cfg.Server.Host, "port", cfg.Server.Port)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down cleanly", "error", err)
	}
}
