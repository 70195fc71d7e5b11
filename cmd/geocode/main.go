// Command geocode resolves addresses in bulk through the configured geocoder
// stack and prints one JSON object per input line.
//
//	geocode "12 Nguyễn Huệ, Quận 1" "Bến Thành"
//	geocode < addresses.txt > addresses.jsonl
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/cache"
	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

type result struct {
	Input   string                 `json:"input"`
	Address *geocode.ParsedAddress `json:"address,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// batch is one run over a list of addresses.
type batch struct {
	provider    geocode.Provider
	countryCode string
	languages   []string
	pause       time.Duration
	log         *logger.Logger
}

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so main can exit with its status.
func run() int {
	pause := flag.Duration("pause", time.Second, "pause between upstream calls")
	country := flag.String("country", "", "ISO country code (defaults to GEOCODING_COUNTRY_CODE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	log := logger.NewWithWriter(cfg.Env, os.Stderr)
	log.Info("starting batch geocode")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.IsRedisEnabled() {
		redisClient, err = cache.NewRedis(ctx, cfg)
		if err != nil {
			log.Warn("redis unavailable; running without cache", "error", err)
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	provider, err := geocode.NewProviderFromConfig(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to initialize geocoder", "error", err)
		return 1
	}

	countryCode := *country
	if countryCode == "" {
		countryCode = cfg.GetDefaultCountryCode()
	}

	b := batch{
		provider:    provider,
		countryCode: countryCode,
		languages:   cfg.GetAcceptLanguages(),
		pause:       *pause,
		log:         log,
	}
	done, failed, err := b.process(ctx, flag.Args(), os.Stdin, os.Stdout)
	if err != nil && ctx.Err() == nil {
		log.Error("batch geocode aborted", "error", err, "processed", done)
		return 1
	}

	log.Info("batch geocode finished", "processed", done, "failed", failed)
	return 0
}

// process geocodes every address from args, or from in when args is empty,
// writing one JSON line per address to out.
func (b batch) process(ctx context.Context, args []string, in io.Reader, out io.Writer) (done, failed int, err error) {
	enc := json.NewEncoder(out)
	err = eachAddress(args, in, func(address string) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res := geocodeOne(ctx, b.provider, address, b.countryCode, b.languages)
		if res.Error != "" {
			failed++
			b.log.Warn("geocode failed", "address", address, "error", res.Error)
		}
		done++
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}

		select {
		case <-ctx.Done():
		case <-time.After(b.pause):
		}
		return nil
	})
	return done, failed, err
}

func geocodeOne(ctx context.Context, provider geocode.Provider, address, countryCode string, languages []string) result {
	res := result{Input: address}

	suggestions, err := provider.Search(ctx, geocode.SearchQuery{
		Text:        address,
		CountryCode: countryCode,
		Limit:       1,
		Languages:   languages,
	})
	switch {
	case err != nil:
		res.Error = err.Error()
	case len(suggestions) == 0:
		res.Error = "no result"
	default:
		parsed := geocode.Parse(suggestions[0])
		res.Address = &parsed
	}
	return res
}

// eachAddress calls fn for every non-blank address in args, or in r when
// args is empty.
func eachAddress(args []string, r io.Reader, fn func(string) error) error {
	if len(args) > 0 {
		for _, a := range args {
			if a = strings.TrimSpace(a); a != "" {
				if err := fn(a); err != nil {
					return err
				}
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
