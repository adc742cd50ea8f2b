package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/ipenrich/internal/config"
	"github.com/evyataryagoni/ipenrich/internal/eligibility"
	"github.com/evyataryagoni/ipenrich/internal/handler"
	"github.com/evyataryagoni/ipenrich/internal/limiter"
	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/metrics"
	"github.com/evyataryagoni/ipenrich/internal/provider"
	"github.com/evyataryagoni/ipenrich/internal/router"
	"github.com/evyataryagoni/ipenrich/internal/service"
	"github.com/evyataryagoni/ipenrich/internal/store"
)

func main() {
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)
	metricsCollector := metrics.New()

	filter := setupFilter(appConfig, metricsCollector, appLogger)
	fetcher := setupProvider(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	lookupService := service.NewLookupService(service.Config{
		Filter:      filter,
		Fetcher:     fetcher,
		Concurrency: appConfig.LookupConcurrency,
		Metrics:     metricsCollector,
		Logger:      appLogger,
	})

	lookupHandler := handler.NewLookupHandler(lookupService, appConfig.AccessToken, appLogger)
	appRouter := router.SetupRouter(router.Options{
		Handler: lookupHandler,
		Limiter: rateLimiter,
		Metrics: metricsCollector,
		Logger:  appLogger,
	})

	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: true,
	})

	appLogger.Info().Msg("Starting IP enrichment server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("provider", appConfig.ProviderBaseURL).
		Bool("default_token", appConfig.AccessToken != "").
		Int("lookup_concurrency", appConfig.LookupConcurrency).
		Dur("lookup_timeout", appConfig.LookupTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("ignore_store_type", appConfig.IgnoreStoreType).
		Msg("Configuration loaded")

	return appLogger
}

// setupFilter reads the operator ignore list once and freezes it into the eligibility filter
func setupFilter(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) *eligibility.Filter {
	ignoreStore, err := store.New(store.Config{
		Type:          appConfig.IgnoreStoreType,
		CSVPath:       appConfig.IgnoreListPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.IgnoreStoreType).Msg("Failed to initialize ignore store")
	}
	defer ignoreStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ignored, err := store.Snapshot(ctx, ignoreStore, appConfig.IgnoreStoreType, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ignore list")
	}

	return eligibility.NewFilter(ignored)
}

// setupProvider builds the outbound client from the startup TLS/proxy settings
func setupProvider(appConfig *config.Config, log *logger.Logger) *provider.Client {
	httpClient, err := provider.NewHTTPClient(provider.ClientConfig{
		CertFile:   appConfig.RequestCert,
		KeyFile:    appConfig.RequestKey,
		Passphrase: appConfig.RequestPassphrase,
		CAFile:     appConfig.RequestCA,
		Proxy:      appConfig.RequestProxy,
		Timeout:    appConfig.LookupTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure provider HTTP client")
	}

	return provider.NewClient(appConfig.ProviderBaseURL, httpClient, log)
}

// setupRateLimiter initializes the inbound rate limiter
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	window := max(appConfig.RateLimitWindow, 1)
	effectiveRate := float64(appConfig.RateLimit) / float64(window)

	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:              appConfig.RateLimitType,
		RequestsPerSecond: effectiveRate,
		RedisAddr:         appConfig.RedisAddr,
		RedisPassword:     appConfig.RedisPassword,
		RedisDB:           appConfig.RedisDB,
		Logger:            log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Float64("requests_per_second", effectiveRate).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/lookup").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Msg("Server is running")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	// Batches are bounded by the provider timeout; give them room to finish
	ctx, cancel := context.WithTimeout(context.Background(), appConfig.LookupTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server stopped")
}
