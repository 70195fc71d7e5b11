// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/httpkit"
	"fastfood_delivery_backend/platform/logger"
)

// RouterConfig is the config slice needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g., Redis ping). May be nil.
	Health HealthChecker
	// RateLimiter guards the command routes. The composition root owns it so
	// it can prune idle visitors; nil builds one from Config.
	RateLimiter *httpkit.IPRateLimiter
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
