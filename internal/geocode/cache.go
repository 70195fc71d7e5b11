package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"fastfood_delivery_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "geo:v1:"
	defaultCacheTTL = 24 * time.Hour
)

// CachedProvider keeps successful provider answers in Redis. Cache failures
// are logged and never fail the lookup itself.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedProvider{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedProvider) Name() string {
	return c.next.Name()
}

func (c *CachedProvider) Search(ctx context.Context, q SearchQuery) ([]Suggestion, error) {
	key := c.key("search", searchKey(q))

	var cached []Suggestion
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	suggestions, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, suggestions)
	return suggestions, nil
}

func (c *CachedProvider) Reverse(ctx context.Context, lat, lon float64, languages []string) (*Suggestion, error) {
	key := c.key("reverse", reverseKey(lat, lon, languages))

	var cached Suggestion
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	suggestion, err := c.next.Reverse(ctx, lat, lon, languages)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, suggestion)
	return suggestion, nil
}

func (c *CachedProvider) key(kind, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + c.next.Name() + ":" + kind + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedProvider) load(ctx context.Context, key string, out interface{}) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("geocode cache read failed", "error", err)
		}
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.log.Warn("geocode cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedProvider) store(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("geocode cache write failed", "error", err)
	}
}

// searchKey identifies a search independent of cosmetic differences in the
// typed text.
func searchKey(q SearchQuery) string {
	return strings.Join([]string{
		NormalizeQuery(q.Text),
		strings.ToLower(q.CountryCode),
		strconv.Itoa(q.Limit),
		AcceptLanguage(q.Languages),
	}, "|")
}

func reverseKey(lat, lon float64, languages []string) string {
	return strings.Join([]string{
		strconv.FormatFloat(lat, 'f', 6, 64),
		strconv.FormatFloat(lon, 'f', 6, 64),
		AcceptLanguage(languages),
	}, "|")
}

var _ Provider = (*CachedProvider)(nil)
