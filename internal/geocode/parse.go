package geocode

import (
	"strconv"
	"strings"
)

// Parse derives the normalized address of a suggestion. It is a pure function
// of its input.
func Parse(s Suggestion) ParsedAddress {
	addr := s.Address

	return ParsedAddress{
		FullAddress:   s.DisplayName,
		StreetAddress: streetAddress(addr),
		Locality:      firstNonEmpty(addr.Suburb, addr.Quarter, addr.Neighbourhood, addr.Village),
		Region:        firstNonEmpty(addr.City, addr.Town, addr.County, addr.State),
		Latitude:      parseCoordinate(s.Lat),
		Longitude:     parseCoordinate(s.Lon),
		DisplayName:   s.DisplayName,
	}
}

func streetAddress(addr AddressParts) string {
	parts := make([]string, 0, 2)
	if addr.HouseNumber != "" {
		parts = append(parts, addr.HouseNumber)
	}
	if addr.Road != "" {
		parts = append(parts, addr.Road)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return firstNonEmpty(addr.Suburb, addr.Quarter, addr.Neighbourhood)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseCoordinate returns 0 for values the upstream sent in an unexpected form.
func parseCoordinate(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}
