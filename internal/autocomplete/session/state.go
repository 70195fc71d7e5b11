package session

import (
	"time"

	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/apperr"

	"github.com/google/uuid"
)

// State is the phase of the suggestion subsystem.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateQuerying   State = "querying"
	StateShowing    State = "showing"
	StateNoResults  State = "no_results"
	StateSelected   State = "selected"
	StateError      State = "error"
)

// Key is a keyboard key name as reported by the browser.
type Key string

const (
	KeyArrowDown Key = "ArrowDown"
	KeyArrowUp   Key = "ArrowUp"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
)

const (
	DefaultCountryCode    = "vn"
	DefaultDebounce       = 600 * time.Millisecond
	DefaultMinQueryLength = 5
	DefaultLimit          = 8
	DefaultRequestTimeout = 10 * time.Second
)

// DefaultLanguages is the preference list sent upstream: Vietnamese first,
// English as the fallback.
var DefaultLanguages = []string{"vi", "en"}

var (
	ErrClosed       = apperr.Gone("autocomplete session is closed")
	ErrDisabled     = apperr.Conflict("autocomplete input is disabled")
	ErrNoSuggestion = apperr.Validation("no suggestion at that index")
	ErrNotFound     = apperr.NotFound("autocomplete session not found")
)

// Props are the inputs the hosting form passes to the widget.
type Props struct {
	Value       string `json:"value"`
	Disabled    bool   `json:"disabled"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	CountryCode string `json:"countryCode"`
}

// ChangeFunc receives every text change. addr is non-nil only when the call
// reports a confirmed selection.
type ChangeFunc func(text string, addr *geocode.ParsedAddress)

// Snapshot is a point-in-time copy of everything a view needs to render.
type Snapshot struct {
	ID uuid.UUID `json:"id"`
	// Version increases with every state change; a view drops any snapshot
	// older than the one it already rendered.
	Version           uint64                 `json:"version"`
	State             State                  `json:"state"`
	Text              string                 `json:"text"`
	Loading           bool                   `json:"loading"`
	DropdownOpen      bool                   `json:"dropdownOpen"`
	Suggestions       []geocode.Suggestion   `json:"suggestions"`
	HighlightedIndex  int                    `json:"highlightedIndex"`
	HasUserSelected   bool                   `json:"hasUserSelected"`
	SelectedAddress   *geocode.ParsedAddress `json:"selectedAddress,omitempty"`
	NeedsConfirmation bool                   `json:"needsConfirmation"`
	Focused           bool                   `json:"focused"`
	Props             Props                  `json:"props"`
}
