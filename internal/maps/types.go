package maps

import "fastfood_delivery_backend/internal/geocode"

// LookupRequest represents the query parameters from the frontend.
type LookupRequest struct {
	Query   string `form:"q" validate:"required,max=300"`
	Country string `form:"country" validate:"omitempty,countrycode"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=20"`
}

// VerifyRequest carries a delivery address typed into separate fields.
type VerifyRequest struct {
	Street string `json:"street" validate:"max=200"`
	Ward   string `json:"ward" validate:"max=200"`
	City   string `json:"city" validate:"max=200"`
}

// ReverseRequest carries coordinates picked on a map.
type ReverseRequest struct {
	Lat *float64 `form:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `form:"lon" validate:"required,min=-180,max=180"`
}

// AddressSuggestion is the normalized data returned to the frontend form.
type AddressSuggestion struct {
	ID string `json:"id"`
	geocode.ParsedAddress
}

// ReverseResponse is the address found at a coordinate.
type ReverseResponse struct {
	DisplayName string `json:"displayName"`
}
