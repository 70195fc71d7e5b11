package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fastfood_delivery_backend/platform/logger"
)

const (
	// DefaultNominatimURL is the public OSM Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	defaultUserAgent      = "FastFoodDelivery/1.0"
	defaultRequestTimeout = 10 * time.Second
)

// NominatimOptions configures a NominatimProvider. Zero values fall back to
// the public instance, a 10s timeout and the default client identifier.
type NominatimOptions struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NominatimProvider searches the OpenStreetMap Nominatim API.
type NominatimProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *logger.Logger
}

func NewNominatimProvider(opts NominatimOptions, log *logger.Logger) *NominatimProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.Nop()
	}

	return &NominatimProvider{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
		log:       log,
	}
}

func (p *NominatimProvider) Name() string {
	return "nominatim"
}

func (p *NominatimProvider) Search(ctx context.Context, q SearchQuery) ([]Suggestion, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Add("q", q.Text)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	if q.Limit > 0 {
		params.Add("limit", strconv.Itoa(q.Limit))
	}
	if q.CountryCode != "" {
		params.Add("countrycodes", q.CountryCode)
	}

	var items []json.RawMessage
	if err := p.get(ctx, "/search", params, q.Languages, &items); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(items))
	for _, item := range items {
		var raw nominatimPlace
		if err := json.Unmarshal(item, &raw); err != nil {
			// One odd candidate does not invalidate the rest of the list.
			p.log.Debug("skipping undecodable nominatim candidate", "error", err)
			continue
		}
		suggestions = append(suggestions, raw.toSuggestion())
	}

	return suggestions, nil
}

func (p *NominatimProvider) Reverse(ctx context.Context, lat, lon float64, languages []string) (*Suggestion, error) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("format", "json")
	params.Add("addressdetails", "1")

	var raw nominatimPlace
	if err := p.get(ctx, "/reverse", params, languages, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" || raw.DisplayName == "" {
		return nil, ErrNoResult
	}

	suggestion := raw.toSuggestion()
	return &suggestion, nil
}

func (p *NominatimProvider) get(ctx context.Context, path string, params url.Values, languages []string, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", p.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept-Language", AcceptLanguage(languages))
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("nominatim request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.log.Error("nominatim upstream error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		p.log.Error("failed to decode nominatim payload", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Suburb        string `json:"suburb"`
	Quarter       string `json:"quarter"`
	Neighbourhood string `json:"neighbourhood"`
	Village       string `json:"village"`
	City          string `json:"city"`
	Town          string `json:"town"`
	County        string `json:"county"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// nominatimPlace mirrors the relevant parts of the OSM search/reverse payload.
type nominatimPlace struct {
	PlaceID     json.Number      `json:"place_id"`
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
	BoundingBox []string         `json:"boundingbox"`
	Error       string           `json:"error"`
}

func (raw nominatimPlace) toSuggestion() Suggestion {
	a := raw.Address
	return Suggestion{
		ID:          raw.PlaceID.String(),
		DisplayName: raw.DisplayName,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
		Address: AddressParts{
			HouseNumber:   a.HouseNumber,
			Road:          a.Road,
			Suburb:        a.Suburb,
			Quarter:       a.Quarter,
			Neighbourhood: a.Neighbourhood,
			Village:       a.Village,
			City:          a.City,
			Town:          a.Town,
			County:        a.County,
			State:         a.State,
			Postcode:      a.Postcode,
			Country:       a.Country,
			CountryCode:   a.CountryCode,
		},
		BoundingBox: raw.BoundingBox,
	}
}

var _ Provider = (*NominatimProvider)(nil)
