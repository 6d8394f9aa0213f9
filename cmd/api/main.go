package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
	"github.com/kashandark/cryptomonetizer/internal/application/session"
	"github.com/kashandark/cryptomonetizer/internal/config"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/database"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/llm"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/rates"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/wallet"
	"github.com/kashandark/cryptomonetizer/internal/presentation/handlers"
	"github.com/kashandark/cryptomonetizer/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting cryptomonetizer API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis cache (optional)
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Connect to the chain node
	chainClient, err := wallet.NewClient(cfg.Chain, logger)
	if err != nil {
		logger.Fatal("Failed to connect to chain node", zap.Error(err))
	}
	defer chainClient.Close()

	balances := wallet.NewBalanceReader(chainClient, logger)

	// Create repositories
	tokenRepo := database.NewTokenRepo(db.DB())
	exchangeRepo := database.NewExchangeRepo(db.DB())
	snapshotRepo := database.NewSnapshotRepo(db.DB())

	// Quote provider
	provider := rates.NewSimulated(cfg.Rates.QuoteWindow)

	// LLM completion backend (optional)
	var completer services.Completer
	if cfg.LLM.APIKey != "" {
		llmClient, err := llm.NewClient(cfg.LLM)
		if err != nil {
			logger.Warn("Failed to configure LLM client, summaries disabled", zap.Error(err))
		} else {
			completer = llmClient
		}
	} else {
		logger.Info("No LLM API key configured, summaries disabled")
	}

	// Create services
	portfolioService := services.NewPortfolioService(tokenRepo, balances, redisCache, logger)
	ratesService := services.NewRatesService(tokenRepo, exchangeRepo, provider, balances, redisCache, logger)
	tokenService := services.NewTokenService(tokenRepo, balances, redisCache, logger)
	historyService := services.NewHistoryService(tokenRepo, snapshotRepo, redisCache, logger)
	summaryService := services.NewSummaryService(completer, redisCache, logger)

	sessions := session.NewManager(cfg.API.SessionTTL)
	sessionService := services.NewSessionService(sessions, tokenRepo, ratesService, summaryService, cfg.API.PipelineTimeout, logger)

	// Create handlers
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, logger)
	ratesHandler := handlers.NewRatesHandler(ratesService, logger)
	tokenHandler := handlers.NewTokenHandler(tokenService, logger)
	historyHandler := handlers.NewHistoryHandler(historyService, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker, chainClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		portfolioHandler.RegisterRoutes(r)
		ratesHandler.RegisterRoutes(r)
		tokenHandler.RegisterRoutes(r)
		historyHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r)
	})

	// Legacy alias kept for clients of the unversioned rates endpoint
	r.Get("/api/rates", ratesHandler.GetRates)

	// Periodically drop idle sessions
	sweepStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.API.SessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-sweepStop:
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info("Swept idle sessions", zap.Int("count", n))
				}
			}
		}
	}()

	// Catalog verification runs in the background; a mismatch is logged,
	// not fatal.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := tokenService.VerifyOnChain(ctx); err != nil {
			logger.Warn("Catalog verification failed", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")
	close(sweepStop)

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	// Let in-flight summary pipelines finish before closing connections
	sessionService.Wait()

	logger.Info("Server stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
