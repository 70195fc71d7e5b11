// Package session implements the address autocomplete widget as a
// server-side state machine: debounced geocoding queries, a ranked suggestion
// list, keyboard navigation and selection/clear reporting to the host form.
package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/logger"

	"github.com/google/uuid"
)

// Searcher is the part of a geocoding provider a session needs.
type Searcher interface {
	Search(ctx context.Context, q geocode.SearchQuery) ([]geocode.Suggestion, error)
}

// Options tune a session. Zero values take the package defaults.
type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	Limit          int
	Languages      []string
	RequestTimeout time.Duration
	Clock          Clock
	// Dispatch runs a geocoding request off the caller's goroutine.
	Dispatch func(func())
	// Observer receives a snapshot after every state change, one call at a
	// time and in version order, possibly on another mutator's goroutine.
	Observer func(Snapshot)
	Logger   *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if len(o.Languages) == 0 {
		o.Languages = DefaultLanguages
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Dispatch == nil {
		o.Dispatch = func(f func()) { go f() }
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// Session is one mounted autocomplete widget. All methods are safe for
// concurrent use; callbacks run outside the session lock.
type Session struct {
	id       uuid.UUID
	searcher Searcher
	onChange ChangeFunc
	opts     Options
	log      *logger.Logger

	mu           sync.Mutex
	props        Props
	state        State
	suggestions  []geocode.Suggestion
	highlighted  int
	hasSelected  bool
	confirmed    *geocode.ParsedAddress
	dropdownOpen bool
	focused      bool
	timer        Timer
	timerGen     uint64
	requestSeq   uint64
	cancelQuery  context.CancelFunc
	closed       bool
	lastActivity time.Time
	version      uint64
	pending      []Snapshot
	flushing     bool
}

// New mounts a session. onChange may be nil.
func New(id uuid.UUID, props Props, searcher Searcher, onChange ChangeFunc, opts Options) *Session {
	opts = opts.withDefaults()
	if onChange == nil {
		onChange = func(string, *geocode.ParsedAddress) {}
	}

	s := &Session{
		id:          id,
		searcher:    searcher,
		onChange:    onChange,
		opts:        opts,
		log:         opts.Logger.WithSessionID(id.String()),
		props:       normalizeProps(props),
		state:       StateIdle,
		highlighted: -1,
	}
	s.lastActivity = opts.Clock.Now()
	return s
}

func normalizeProps(p Props) Props {
	p.CountryCode = strings.ToLower(strings.TrimSpace(p.CountryCode))
	if p.CountryCode == "" {
		p.CountryCode = DefaultCountryCode
	}
	return p
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// LastActivity reports when the user last interacted with the session.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Snapshot returns the current view state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Input handles a direct edit of the text field.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return
	}

	s.props.Value = text
	// Typed text is never treated as verified.
	s.hasSelected = false
	s.confirmed = nil
	s.highlighted = -1
	s.stopTimerLocked()
	s.abandonQueryLocked()

	if s.qualifies(text) {
		s.state = StateDebouncing
		s.armTimerLocked()
	} else {
		s.state = StateIdle
		s.suggestions = nil
		s.dropdownOpen = false
	}

	s.changedLocked()
	s.mu.Unlock()

	s.onChange(text, nil)
	s.flush()
}

// KeyDown handles a key press in the text field. It reports whether the key
// was consumed, in which case the browser default must be prevented.
func (s *Session) KeyDown(key Key) bool {
	s.mu.Lock()
	if !s.interactiveLocked() || !s.dropdownOpen || len(s.suggestions) == 0 {
		s.mu.Unlock()
		return false
	}

	var commit *geocode.ParsedAddress
	last := len(s.suggestions) - 1

	switch key {
	case KeyArrowDown:
		if s.highlighted < last {
			s.highlighted++
		}
	case KeyArrowUp:
		if s.highlighted > 0 {
			s.highlighted--
		} else {
			s.highlighted = 0
		}
	case KeyEnter:
		if s.highlighted >= 0 && s.highlighted <= last {
			commit = s.commitLocked(s.highlighted)
		}
	case KeyEscape:
		s.dropdownOpen = false
		s.highlighted = -1
	default:
		s.mu.Unlock()
		return false
	}

	s.changedLocked()
	s.mu.Unlock()

	if commit != nil {
		s.onChange(commit.DisplayName, commit)
	}
	s.flush()
	return true
}

// Select commits the suggestion at index, as a pointer click on the
// dropdown item would.
func (s *Session) Select(index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.props.Disabled {
		s.mu.Unlock()
		return ErrDisabled
	}
	if !s.dropdownOpen || index < 0 || index >= len(s.suggestions) {
		s.mu.Unlock()
		return ErrNoSuggestion
	}

	parsed := s.commitLocked(index)
	s.changedLocked()
	s.mu.Unlock()

	s.onChange(parsed.DisplayName, parsed)
	s.flush()
	return nil
}

// Clear resets the field and any confirmed address, and focuses the input.
func (s *Session) Clear() {
	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return
	}

	s.stopTimerLocked()
	s.abandonQueryLocked()
	s.props.Value = ""
	s.confirmed = nil
	s.hasSelected = false
	s.suggestions = nil
	s.highlighted = -1
	s.dropdownOpen = false
	s.focused = true
	s.state = StateIdle

	s.changedLocked()
	s.mu.Unlock()

	s.onChange("", nil)
	s.flush()
}

// Focus reopens the dropdown when a suggestion list is still held.
func (s *Session) Focus() {
	s.update(func() {
		s.focused = true
		if len(s.suggestions) > 0 {
			s.dropdownOpen = true
		}
	})
}

// PointerDownOutside closes the dropdown; text and selection are untouched.
func (s *Session) PointerDownOutside() {
	s.update(func() {
		s.focused = false
		s.dropdownOpen = false
	})
}

// SetProps applies new props from the host form. A changed Value replaces the
// text without reporting a change back and without starting a query.
func (s *Session) SetProps(p Props) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.props = normalizeProps(p)
	s.changedLocked()
	s.mu.Unlock()

	s.flush()
}

// Close unmounts the session: the pending timer is stopped, the in-flight
// request is cancelled and later responses are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.abandonQueryLocked()
	s.dropdownOpen = false
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) update(fn func()) {
	s.mu.Lock()
	if !s.interactiveLocked() {
		s.mu.Unlock()
		return
	}
	fn()
	s.changedLocked()
	s.mu.Unlock()

	s.flush()
}

// interactiveLocked reports whether user input is accepted and records the
// activity when it is.
func (s *Session) interactiveLocked() bool {
	if s.closed || s.props.Disabled {
		return false
	}
	s.lastActivity = s.opts.Clock.Now()
	return true
}

func (s *Session) qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= s.opts.MinQueryLength
}

func (s *Session) commitLocked(index int) *geocode.ParsedAddress {
	parsed := geocode.Parse(s.suggestions[index])

	s.stopTimerLocked()
	s.abandonQueryLocked()
	s.props.Value = parsed.DisplayName
	s.confirmed = &parsed
	s.hasSelected = true
	s.dropdownOpen = false
	s.suggestions = nil
	s.highlighted = -1
	s.state = StateSelected

	s.log.Debug("address selected", "display_name", parsed.DisplayName)

	result := parsed
	return &result
}

// armTimerLocked replaces any pending timer; at most one is ever live.
func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = s.opts.Clock.AfterFunc(s.opts.Debounce, func() { s.fire(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// A callback already past Stop sees a stale generation and bails out.
	s.timerGen++
}

// abandonQueryLocked makes any in-flight response stale and cancels it.
func (s *Session) abandonQueryLocked() {
	s.requestSeq++
	if s.cancelQuery != nil {
		s.cancelQuery()
		s.cancelQuery = nil
	}
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.timerGen || s.state != StateDebouncing {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	text := s.props.Value
	if !s.qualifies(text) {
		s.state = StateIdle
		s.changedLocked()
		s.mu.Unlock()
		s.flush()
		return
	}

	s.requestSeq++
	seq := s.requestSeq
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	s.cancelQuery = cancel

	s.state = StateQuerying
	s.suggestions = nil
	s.highlighted = -1
	s.dropdownOpen = false

	query := geocode.SearchQuery{
		Text:        text,
		CountryCode: s.props.CountryCode,
		Limit:       s.opts.Limit,
		Languages:   s.opts.Languages,
	}
	s.changedLocked()
	s.mu.Unlock()

	s.flush()
	s.opts.Dispatch(func() { s.runQuery(ctx, cancel, seq, query) })
}

func (s *Session) runQuery(ctx context.Context, cancel context.CancelFunc, seq uint64, query geocode.SearchQuery) {
	results, err := s.searcher.Search(ctx, query)
	cancel()

	s.mu.Lock()
	if s.closed || seq != s.requestSeq || s.state != StateQuerying || s.props.Value != query.Text {
		s.mu.Unlock()
		s.log.Debug("discarding stale geocode response", "query", query.Text)
		return
	}
	s.cancelQuery = nil
	s.highlighted = -1

	if err != nil {
		s.log.GeocodeFailure("autocomplete", query.Text, err)
		s.state = StateError
		s.suggestions = nil
		s.dropdownOpen = false
	} else {
		// Upstream rank is authoritative; the list is kept as returned.
		s.suggestions = results
		s.dropdownOpen = true
		if len(results) == 0 {
			s.state = StateNoResults
		} else {
			s.state = StateShowing
		}
	}

	s.changedLocked()
	s.mu.Unlock()

	s.flush()
}

func (s *Session) snapshotLocked() Snapshot {
	var confirmed *geocode.ParsedAddress
	if s.confirmed != nil {
		c := *s.confirmed
		confirmed = &c
	}

	suggestions := slices.Clone(s.suggestions)
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}

	return Snapshot{
		ID:                s.id,
		Version:           s.version,
		State:             s.state,
		Text:              s.props.Value,
		Loading:           s.state == StateDebouncing || s.state == StateQuerying,
		DropdownOpen:      s.dropdownOpen,
		Suggestions:       suggestions,
		HighlightedIndex:  s.highlighted,
		HasUserSelected:   s.hasSelected,
		SelectedAddress:   confirmed,
		NeedsConfirmation: strings.TrimSpace(s.props.Value) != "" && !s.hasSelected,
		Focused:           s.focused,
		Props:             s.props,
	}
}

// changedLocked records a state change: it bumps the version and queues the
// snapshot for the observer in version order.
func (s *Session) changedLocked() {
	s.version++
	if s.opts.Observer != nil {
		s.pending = append(s.pending, s.snapshotLocked())
	}
}

// flush delivers queued snapshots outside the lock. Only one goroutine
// delivers at a time; a caller that finds delivery in progress returns and
// leaves its snapshot to the running deliverer, so the observer sees versions
// strictly in order without blocking the mutating caller.
func (s *Session) flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.opts.Observer(snap)
		s.mu.Lock()
	}
	s.flushing = false
	s.pending = nil
	s.mu.Unlock()
}
