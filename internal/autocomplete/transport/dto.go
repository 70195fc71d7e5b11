package transport

import (
	"fastfood_delivery_backend/internal/autocomplete/session"
	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/sanitize"
)

// Props mirrors the widget inputs the host form controls.
type Props struct {
	Value       string `json:"value" validate:"max=500"`
	Disabled    bool   `json:"disabled"`
	Placeholder string `json:"placeholder" validate:"max=200"`
	Required    bool   `json:"required"`
	CountryCode string `json:"countryCode" validate:"omitempty,countrycode"`
}

func (p Props) ToSession() session.Props {
	return session.Props{
		Value:       p.Value,
		Disabled:    p.Disabled,
		Placeholder: sanitize.Text(p.Placeholder),
		Required:    p.Required,
		CountryCode: p.CountryCode,
	}
}

type OpenSessionRequest struct {
	Props
}

type InputRequest struct {
	Text string `json:"text" validate:"max=500"`
}

type KeyRequest struct {
	Key string `json:"key" validate:"required,max=32"`
}

type KeyResponse struct {
	// PreventDefault is true when the key was consumed by the dropdown.
	PreventDefault bool             `json:"preventDefault"`
	Session        session.Snapshot `json:"session"`
}

type SelectRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// ChangeEvent is the payload of a change notification to the host form.
type ChangeEvent struct {
	Text    string                 `json:"text"`
	Address *geocode.ParsedAddress `json:"address"`
}
