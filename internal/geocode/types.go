package geocode

// AddressParts is the structured address breakdown of a candidate.
// Any field may be empty.
type AddressParts struct {
	HouseNumber   string `json:"houseNumber,omitempty"`
	Road          string `json:"road,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	Quarter       string `json:"quarter,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Village       string `json:"village,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	County        string `json:"county,omitempty"`
	State         string `json:"state,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
}

// Suggestion is one ranked address candidate returned by a provider.
// Coordinates are kept as the strings the upstream returned.
type Suggestion struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"displayName"`
	Lat         string       `json:"lat"`
	Lon         string       `json:"lon"`
	Address     AddressParts `json:"address"`
	BoundingBox []string     `json:"boundingBox,omitempty"`
}

// ParsedAddress is the normalized form of a single Suggestion handed to callers.
type ParsedAddress struct {
	FullAddress   string  `json:"fullAddress"`
	StreetAddress string  `json:"streetAddress"`
	Locality      string  `json:"locality"`
	Region        string  `json:"region"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DisplayName   string  `json:"displayName"`
}

// SearchQuery describes one free-text search against a provider.
type SearchQuery struct {
	Text        string
	CountryCode string
	Limit       int
	// Languages is the ordered preference list, e.g. ["vi", "en"].
	Languages []string
}

// VerificationResult reports whether a street/ward/city triple resolves to a
// specific enough location.
type VerificationResult struct {
	Valid            bool    `json:"isValid"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Message          string  `json:"message,omitempty"`
}
