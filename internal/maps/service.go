package maps

import (
	"context"
	"strings"
	"unicode/utf8"

	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/apperr"
	"fastfood_delivery_backend/platform/logger"
	"fastfood_delivery_backend/platform/sanitize"
)

const defaultLookupLimit = 8

// Config is the slice of configuration the maps service reads.
type Config interface {
	GetDefaultCountryCode() string
	GetAcceptLanguages() []string
	GetMinQueryLength() int
}

// Service answers one-shot address lookups outside an autocomplete session.
type Service struct {
	provider  geocode.Provider
	verifier  *geocode.Verifier
	bus       events.Publisher
	country   string
	languages []string
	minLength int
	log       *logger.Logger
}

func NewService(provider geocode.Provider, verifier *geocode.Verifier, bus events.Publisher, cfg Config, log *logger.Logger) *Service {
	return &Service{
		provider:  provider,
		verifier:  verifier,
		bus:       bus,
		country:   cfg.GetDefaultCountryCode(),
		languages: cfg.GetAcceptLanguages(),
		minLength: cfg.GetMinQueryLength(),
		log:       log,
	}
}

// SearchAddress geocodes free text into parsed addresses, best match first.
func (s *Service) SearchAddress(ctx context.Context, query, country string, limit int) ([]AddressSuggestion, error) {
	query = sanitize.Text(query)
	if utf8.RuneCountInString(query) < s.minLength {
		return nil, apperr.Validation("query is too short").
			WithDetails(map[string]int{"minLength": s.minLength})
	}
	if country == "" {
		country = s.country
	}
	if limit <= 0 {
		limit = defaultLookupLimit
	}

	results, err := s.provider.Search(ctx, geocode.SearchQuery{
		Text:        query,
		CountryCode: strings.ToLower(country),
		Limit:       limit,
		Languages:   s.languages,
	})
	if err != nil {
		s.log.WithContext(ctx).GeocodeFailure(s.provider.Name(), query, err)
		return nil, apperr.Upstream("address lookup service unavailable", err)
	}

	suggestions := make([]AddressSuggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, AddressSuggestion{ID: r.ID, ParsedAddress: geocode.Parse(r)})
	}
	return suggestions, nil
}

// Verify checks a delivery address and publishes the outcome.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) geocode.VerificationResult {
	req.Street, req.Ward, req.City = sanitize.Text(req.Street), sanitize.Text(req.Ward), sanitize.Text(req.City)
	result := s.verifier.Verify(ctx, req.Street, req.Ward, req.City)

	s.bus.Publish(ctx, events.AddressVerified{
		BaseEvent: events.NewBaseEvent(),
		Query:     strings.Join([]string{req.Street, req.Ward, req.City}, ", "),
		Valid:     result.Valid,
	})
	return result
}

// Reverse resolves coordinates to a display name.
func (s *Service) Reverse(ctx context.Context, lat, lon float64) (ReverseResponse, error) {
	name, ok := s.verifier.DisplayName(ctx, lat, lon)
	if !ok {
		return ReverseResponse{}, apperr.NotFound("no address found at these coordinates")
	}
	return ReverseResponse{DisplayName: name}, nil
}
