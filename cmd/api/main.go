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

	"fastfood_delivery_backend/internal/autocomplete"
	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/internal/geocode"
	apphttp "fastfood_delivery_backend/internal/http"
	"fastfood_delivery_backend/internal/http/router"
	"fastfood_delivery_backend/internal/maps"
	"fastfood_delivery_backend/platform/cache"
	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/httpkit"
	"fastfood_delivery_backend/platform/logger"
	"fastfood_delivery_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterPruneInterval = time.Minute
	limiterIdleAfter     = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	provider, err := geocode.NewProviderFromConfig(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to initialize geocoder", "error", err)
		panic("failed to initialize geocoder: " + err.Error())
	}
	log.Info("geocoder initialized",
		"provider", provider.Name(),
		"country", cfg.GetDefaultCountryCode(),
		"cache", redisClient != nil,
	)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	verifier := geocode.NewVerifier(
		provider,
		cfg.GetDefaultCountryCode(),
		geocode.CountryName(cfg.GetDefaultCountryCode()),
		cfg.GetAcceptLanguages(),
		log,
	)

	autocompleteModule := autocomplete.NewModule(provider, cfg, eventBus, val, log)
	autocompleteModule.RegisterHandlers(eventBus)
	go autocompleteModule.Run(ctx)

	mapsModule := maps.NewModule(provider, verifier, eventBus, cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	limiter := httpkit.NewPerMinuteLimiter(cfg.GetRateLimitPerMinute(), log)
	go limiter.RunPruner(ctx, limiterPruneInterval, limiterIdleAfter)

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      cache.NewPingAdapter(redisClient),
		RateLimiter: limiter,
		EventBus:    eventBus,
		Modules: []apphttp.Module{
			autocompleteModule,
			mapsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}

	// Streams never finish on their own; end them before draining the server.
	autocompleteModule.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	eventBus.Wait()
	log.Info("server stopped")
}

// initRedis connects the optional geocode cache. Without it every lookup goes
// upstream, which is slower but correct.
func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; geocode cache disabled")
		return nil
	}

	var client *redis.Client
	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		c, err := cache.NewRedis(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	}); err != nil {
		log.Error("redis unavailable; geocode cache disabled", "error", err)
		return nil
	}
	log.Info("redis connection established")
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
