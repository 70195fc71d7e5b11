package geocode

import (
	"fmt"

	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// StackConfig combines the config interfaces needed to assemble a provider.
type StackConfig interface {
	config.GeocodingConfig
	config.GoogleMapsConfig
	config.RedisConfig
}

// NewProviderFromConfig assembles the configured upstream behind the
// throttle and, when redisClient is non-nil, the result cache. Cache hits do
// not count against the upstream rate.
func NewProviderFromConfig(cfg StackConfig, redisClient *redis.Client, log *logger.Logger) (Provider, error) {
	var base Provider
	switch cfg.GetGeocodingProvider() {
	case "", "nominatim":
		base = NewNominatimProvider(NominatimOptions{
			BaseURL:   cfg.GetNominatimBaseURL(),
			UserAgent: cfg.GetNominatimUserAgent(),
			Timeout:   cfg.GetGeocodingTimeout(),
		}, log)
	case "google":
		google, err := NewGoogleProvider(cfg.GetGoogleMapsAPIKey(), log)
		if err != nil {
			return nil, fmt.Errorf("google geocoder: %w", err)
		}
		base = google
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", cfg.GetGeocodingProvider())
	}

	var provider Provider = NewThrottledProvider(base, cfg.GetGeocodingRatePerSecond(), cfg.GetGeocodingTimeout())
	if redisClient != nil {
		provider = NewCachedProvider(provider, redisClient, cfg.GetGeocodeCacheTTL(), log)
	}
	return provider, nil
}
