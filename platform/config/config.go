// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerMinute() int
}

// GeocodingConfig provides settings for the geocoding provider stack.
type GeocodingConfig interface {
	GetGeocodingProvider() string
	GetNominatimBaseURL() string
	GetNominatimUserAgent() string
	GetGeocodingTimeout() time.Duration
	GetGeocodingRatePerSecond() float64
	GetDefaultCountryCode() string
	GetAcceptLanguages() []string
}

// GoogleMapsConfig provides settings for the Google geocoding provider.
type GoogleMapsConfig interface {
	GetGoogleMapsAPIKey() string
	IsGoogleMapsEnabled() bool
}

// RedisConfig provides settings for the geocode result cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetGeocodeCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// AutocompleteConfig provides settings for autocomplete sessions.
type AutocompleteConfig interface {
	GetDebounceDelay() time.Duration
	GetMinQueryLength() int
	GetSuggestionLimit() int
	GetSessionIdleTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RateLimitPerMinute  int
	GeocodingProvider   string
	NominatimBaseURL    string
	NominatimUserAgent  string
	GeocodingTimeout    time.Duration
	GeocodingRatePerSec float64
	DefaultCountryCode  string
	AcceptLanguages     []string
	GoogleMapsAPIKey    string
	RedisURL            string
	RedisTLSInsecure    bool
	GeocodeCacheTTL     time.Duration
	DebounceDelay       time.Duration
	MinQueryLength      int
	SuggestionLimit     int
	SessionIdleTTL      time.Duration
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool    { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }

// GeocodingConfig implementation
func (c *Config) GetGeocodingProvider() string       { return c.GeocodingProvider }
func (c *Config) GetNominatimBaseURL() string        { return c.NominatimBaseURL }
func (c *Config) GetNominatimUserAgent() string      { return c.NominatimUserAgent }
func (c *Config) GetGeocodingTimeout() time.Duration { return c.GeocodingTimeout }
func (c *Config) GetGeocodingRatePerSecond() float64 { return c.GeocodingRatePerSec }
func (c *Config) GetDefaultCountryCode() string      { return c.DefaultCountryCode }
func (c *Config) GetAcceptLanguages() []string       { return c.AcceptLanguages }

// GoogleMapsConfig implementation
func (c *Config) GetGoogleMapsAPIKey() string { return c.GoogleMapsAPIKey }
func (c *Config) IsGoogleMapsEnabled() bool   { return c.GoogleMapsAPIKey != "" }

// RedisConfig implementation
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool         { return c.RedisTLSInsecure }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }
func (c *Config) IsRedisEnabled() bool              { return c.RedisURL != "" }

// AutocompleteConfig implementation
func (c *Config) GetDebounceDelay() time.Duration  { return c.DebounceDelay }
func (c *Config) GetMinQueryLength() int           { return c.MinQueryLength }
func (c *Config) GetSuggestionLimit() int          { return c.SuggestionLimit }
func (c *Config) GetSessionIdleTTL() time.Duration { return c.SessionIdleTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitPerMinute:  mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "600")),
		GeocodingProvider:   strings.ToLower(getEnv("GEOCODING_PROVIDER", "nominatim")),
		NominatimBaseURL:    getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent:  getEnv("NOMINATIM_USER_AGENT", "FastFoodDelivery/1.0"),
		GeocodingTimeout:    mustDuration(getEnv("GEOCODING_TIMEOUT", "10s")),
		GeocodingRatePerSec: mustFloat(getEnv("GEOCODING_RATE_PER_SECOND", "1")),
		DefaultCountryCode:  strings.ToLower(getEnv("GEOCODING_COUNTRY_CODE", "vn")),
		AcceptLanguages:     splitCSV(getEnv("GEOCODING_ACCEPT_LANGUAGES", "vi,en")),
		GoogleMapsAPIKey:    getEnv("GOOGLE_MAPS_API_KEY", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		GeocodeCacheTTL:     mustDuration(getEnv("GEOCODE_CACHE_TTL", "24h")),
		DebounceDelay:       mustDuration(getEnv("AUTOCOMPLETE_DEBOUNCE", "600ms")),
		MinQueryLength:      mustInt(getEnv("AUTOCOMPLETE_MIN_LENGTH", "5")),
		SuggestionLimit:     mustInt(getEnv("AUTOCOMPLETE_LIMIT", "8")),
		SessionIdleTTL:      mustDuration(getEnv("AUTOCOMPLETE_SESSION_TTL", "30m")),
	}

	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	switch cfg.GeocodingProvider {
	case "nominatim":
	case "google":
		if !cfg.IsGoogleMapsEnabled() {
			return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required when GEOCODING_PROVIDER is google")
		}
	default:
		return nil, fmt.Errorf("unknown GEOCODING_PROVIDER %q", cfg.GeocodingProvider)
	}
	if cfg.DebounceDelay <= 0 {
		return nil, fmt.Errorf("AUTOCOMPLETE_DEBOUNCE must be a positive duration")
	}
	if cfg.MinQueryLength < 1 {
		return nil, fmt.Errorf("AUTOCOMPLETE_MIN_LENGTH must be at least 1")
	}
	if cfg.SuggestionLimit < 1 {
		return nil, fmt.Errorf("AUTOCOMPLETE_LIMIT must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
