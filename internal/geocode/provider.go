// Package geocode provides address search against external geocoding services
// and the normalization of their results.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrEmptyQuery is returned when a search is attempted with blank text.
	ErrEmptyQuery = errors.New("geocode: query is empty")
	// ErrUpstream is returned when the provider answered with a failure or
	// could not be reached.
	ErrUpstream = errors.New("geocode: upstream request failed")
	// ErrMalformedResponse is returned when the provider payload could not be
	// decoded at all.
	ErrMalformedResponse = errors.New("geocode: malformed upstream response")
	// ErrNoResult is returned by Reverse when nothing matches the coordinates.
	ErrNoResult = errors.New("geocode: no result")
)

// Provider is an external geocoding service.
type Provider interface {
	// Name identifies the provider in logs and cache keys.
	Name() string
	// Search returns candidates in the provider's rank order.
	Search(ctx context.Context, q SearchQuery) ([]Suggestion, error)
	// Reverse returns the closest address for a coordinate pair.
	Reverse(ctx context.Context, lat, lon float64, languages []string) (*Suggestion, error)
}
