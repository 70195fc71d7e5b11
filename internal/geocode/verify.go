package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fastfood_delivery_backend/platform/logger"
)

const (
	msgIncompleteAddress = "please fill in street, ward and city"
	msgNotSpecific       = "address is not specific enough, include house number and street name"
	msgNotFound          = "address could not be found, check the street name"
	msgVerifyFailed      = "address could not be verified, please try again"
)

// Verifier checks a delivery address typed into separate form fields and
// resolves coordinates for it.
type Verifier struct {
	provider    Provider
	countryName string
	countryCode string
	languages   []string
	log         *logger.Logger
}

// NewVerifier creates a verifier restricted to countryCode. countryName is
// appended to every query to bias the upstream ranking.
func NewVerifier(provider Provider, countryCode, countryName string, languages []string, log *logger.Logger) *Verifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Verifier{
		provider:    provider,
		countryName: countryName,
		countryCode: countryCode,
		languages:   languages,
		log:         log,
	}
}

// Verify never returns an error: failures are reported as an invalid result
// with a user-facing message.
func (v *Verifier) Verify(ctx context.Context, street, ward, city string) VerificationResult {
	street, ward, city = strings.TrimSpace(street), strings.TrimSpace(ward), strings.TrimSpace(city)
	if street == "" || ward == "" || city == "" {
		return VerificationResult{Valid: false, Message: msgIncompleteAddress}
	}

	parts := []string{street, ward, city}
	if v.countryName != "" {
		parts = append(parts, v.countryName)
	}
	query := strings.Join(parts, ", ")

	results, err := v.provider.Search(ctx, SearchQuery{
		Text:        query,
		CountryCode: v.countryCode,
		Limit:       1,
		Languages:   v.languages,
	})
	if err != nil {
		v.log.GeocodeFailure(v.provider.Name(), query, err)
		return VerificationResult{Valid: false, Message: msgVerifyFailed}
	}
	if len(results) == 0 {
		return VerificationResult{Valid: false, Message: msgNotFound}
	}

	best := results[0]
	if best.Address.Road == "" && best.Address.Suburb == "" && best.Address.City == "" {
		return VerificationResult{Valid: false, Message: msgNotSpecific}
	}

	parsed := Parse(best)
	return VerificationResult{
		Valid:            true,
		Latitude:         parsed.Latitude,
		Longitude:        parsed.Longitude,
		FormattedAddress: best.DisplayName,
	}
}

// DisplayName resolves coordinates to a human-readable address. It reports
// false when nothing was found or the upstream failed.
func (v *Verifier) DisplayName(ctx context.Context, lat, lon float64) (string, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", false
	}

	suggestion, err := v.provider.Reverse(ctx, lat, lon, v.languages)
	if err != nil {
		if !errors.Is(err, ErrNoResult) {
			v.log.GeocodeFailure(v.provider.Name(), fmt.Sprintf("%f,%f", lat, lon), err)
		}
		return "", false
	}
	if suggestion == nil || suggestion.DisplayName == "" {
		return "", false
	}
	return suggestion.DisplayName, true
}
