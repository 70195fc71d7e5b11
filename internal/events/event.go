// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Autocomplete Domain Events
// =============================================================================

// AutocompleteSessionOpened is published when a widget session is mounted.
type AutocompleteSessionOpened struct {
	BaseEvent
	SessionID   uuid.UUID `json:"sessionId"`
	CountryCode string    `json:"countryCode"`
}

func (e AutocompleteSessionOpened) EventName() string { return "autocomplete.session.opened" }

// AutocompleteSessionClosed is published when a session is unmounted or expires.
type AutocompleteSessionClosed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
}

func (e AutocompleteSessionClosed) EventName() string { return "autocomplete.session.closed" }

// AddressChanged is published for every change the widget reports to its host
// form. Address is set only for a confirmed selection.
type AddressChanged struct {
	BaseEvent
	SessionID uuid.UUID              `json:"sessionId"`
	Text      string                 `json:"text"`
	Address   *geocode.ParsedAddress `json:"address,omitempty"`
}

func (e AddressChanged) EventName() string { return "autocomplete.address.changed" }

// Confirmed reports whether the change carries a verified address.
func (e AddressChanged) Confirmed() bool { return e.Address != nil }

// =============================================================================
// Maps Domain Events
// =============================================================================

// AddressVerified is published after a verification request completes.
type AddressVerified struct {
	BaseEvent
	Query string `json:"query"`
	Valid bool   `json:"valid"`
}

func (e AddressVerified) EventName() string { return "maps.address.verified" }
