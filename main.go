package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talktotoyota/config"
	httpLayer "talktotoyota/http"
	"talktotoyota/observability"
	"talktotoyota/repository"
	"talktotoyota/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Cache: Redis when configured and reachable, in-process map otherwise.
	var cache repository.CacheRepository = repository.NewMockCache()
	if cfg.Redis.Addr != "" {
		redisCache := repository.NewRedisCache(cfg.Redis.Addr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, using in-process cache", "addr", cfg.Redis.Addr, "error", err)
			redisCache.Close()
		} else {
			logger.Info("using redis cache", "addr", cfg.Redis.Addr)
			cache = redisCache
			defer redisCache.Close()
		}
	}

	// Catalog: SQLite when a path is configured, embedded seed otherwise.
	var vehicleRepo repository.VehicleRepository
	if cfg.Database.SQLitePath != "" {
		sqliteRepo, err := repository.NewSQLiteVehicleRepository(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("sqlite catalog unavailable, using embedded catalog", "path", cfg.Database.SQLitePath, "error", err)
		} else {
			logger.Info("using sqlite catalog", "path", cfg.Database.SQLitePath)
			vehicleRepo = sqliteRepo
		}
	}
	if vehicleRepo == nil {
		memRepo, err := repository.NewMemoryVehicleRepository()
		if err != nil {
			logger.Error("loading embedded catalog failed", "error", err)
			os.Exit(1)
		}
		vehicleRepo = memRepo
	}
	defer vehicleRepo.Close()

	financeService := service.NewFinanceService()
	vehicleService := service.NewVehicleService(vehicleRepo, cache, logger)
	aiService := service.NewAIService(cfg.OpenRouter.APIKey, cfg.Server.AppURL, financeService, logger)
	checkoutService := service.NewCheckoutService(cfg.OpenRouter.APIKey, cfg.Server.AppURL, logger)
	voiceService := service.NewVoiceService(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, logger)

	if cfg.OpenRouter.APIKey == "" {
		logger.Warn("OPENROUTER_API_KEY not set, assistants run in fallback mode")
	}
	if cfg.ElevenLabs.APIKey == "" {
		logger.Warn("ELEVENLABS_API_KEY not set, text-to-speech disabled")
	}

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)
	defer rateLimiter.Stop()

	metrics := observability.NewMetrics()

	mux := httpLayer.NewMux(httpLayer.Handlers{
		Finance:      httpLayer.NewFinanceHandler(financeService),
		Vehicles:     httpLayer.NewVehicleHandler(vehicleService),
		Conversation: httpLayer.NewConversationHandler(aiService, checkoutService, logger),
		Voice:        httpLayer.NewVoiceHandler(voiceService, logger),
	}, httpLayer.MuxConfig{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Limiter:       rateLimiter,
		Metrics:       metrics,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
		return
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server exited")
}
