package geocode

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fastfood_delivery_backend/platform/logger"

	"googlemaps.github.io/maps"
)

// GoogleProvider searches the Google Geocoding API.
type GoogleProvider struct {
	client *maps.Client
	log    *logger.Logger
}

func NewGoogleProvider(apiKey string, log *logger.Logger) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	return &GoogleProvider{client: client, log: log}, nil
}

func (g *GoogleProvider) Name() string {
	return "google"
}

func (g *GoogleProvider) Search(ctx context.Context, q SearchQuery) ([]Suggestion, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	req := &maps.GeocodingRequest{
		Address:  text,
		Language: primaryLanguage(q.Languages),
	}
	if q.CountryCode != "" {
		req.Region = q.CountryCode
		req.Components = map[maps.Component]string{
			maps.ComponentCountry: q.CountryCode,
		}
	}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		g.log.Error("google geocode request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}

	suggestions := make([]Suggestion, 0, len(results))
	for _, result := range results {
		suggestions = append(suggestions, suggestionFromGoogle(result))
	}
	return suggestions, nil
}

func (g *GoogleProvider) Reverse(ctx context.Context, lat, lon float64, languages []string) (*Suggestion, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lon},
		Language: primaryLanguage(languages),
	})
	if err != nil {
		g.log.Error("google reverse geocode failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	suggestion := suggestionFromGoogle(results[0])
	return &suggestion, nil
}

func suggestionFromGoogle(result maps.GeocodingResult) Suggestion {
	var parts AddressParts
	for _, component := range result.AddressComponents {
		for _, kind := range component.Types {
			switch kind {
			case "street_number":
				parts.HouseNumber = component.LongName
			case "route":
				parts.Road = component.LongName
			case "sublocality_level_1", "sublocality":
				if parts.Suburb == "" {
					parts.Suburb = component.LongName
				}
			case "neighborhood":
				parts.Neighbourhood = component.LongName
			case "locality":
				parts.City = component.LongName
			case "administrative_area_level_2":
				parts.County = component.LongName
			case "administrative_area_level_1":
				parts.State = component.LongName
			case "postal_code":
				parts.Postcode = component.LongName
			case "country":
				parts.Country = component.LongName
				parts.CountryCode = strings.ToLower(component.ShortName)
			}
		}
	}

	location := result.Geometry.Location
	viewport := result.Geometry.Viewport

	return Suggestion{
		ID:          result.PlaceID,
		DisplayName: result.FormattedAddress,
		Lat:         formatCoordinate(location.Lat),
		Lon:         formatCoordinate(location.Lng),
		Address:     parts,
		BoundingBox: []string{
			formatCoordinate(viewport.SouthWest.Lat),
			formatCoordinate(viewport.NorthEast.Lat),
			formatCoordinate(viewport.SouthWest.Lng),
			formatCoordinate(viewport.NorthEast.Lng),
		},
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
}

var _ Provider = (*GoogleProvider)(nil)
