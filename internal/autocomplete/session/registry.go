package session

import (
	"context"
	"sync"
	"time"

	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/logger"

	"github.com/google/uuid"
)

const minSweepInterval = time.Second

// Hooks connect sessions to the outside world. Any field may be nil.
type Hooks struct {
	OnOpen     func(Snapshot)
	OnChange   func(id uuid.UUID, text string, addr *geocode.ParsedAddress)
	OnSnapshot func(Snapshot)
	OnClose    func(id uuid.UUID)
}

// Registry owns every mounted session. A session is registered by Open and
// always deregistered by Close, by idle expiry or by Shutdown.
type Registry struct {
	searcher Searcher
	opts     Options
	hooks    Hooks
	idleTTL  time.Duration
	log      *logger.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates a registry whose sessions share searcher and opts.
// A non-positive idleTTL disables expiry.
func NewRegistry(searcher Searcher, opts Options, idleTTL time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	opts.Logger = log
	return &Registry{
		searcher: searcher,
		opts:     opts.withDefaults(),
		idleTTL:  idleTTL,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// SetHooks installs the callbacks used by sessions opened afterwards.
func (r *Registry) SetHooks(h Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = h
}

// Open mounts a new session.
func (r *Registry) Open(props Props) *Session {
	id := uuid.New()

	r.mu.Lock()
	hooks := r.hooks
	opts := r.opts
	opts.Observer = hooks.OnSnapshot

	var onChange ChangeFunc
	if hooks.OnChange != nil {
		onChange = func(text string, addr *geocode.ParsedAddress) {
			hooks.OnChange(id, text, addr)
		}
	}

	s := New(id, props, r.searcher, onChange, opts)
	r.sessions[id] = s
	r.mu.Unlock()

	if hooks.OnOpen != nil {
		hooks.OnOpen(s.Snapshot())
	}

	r.log.Debug("autocomplete session opened", "session_id", id.String())
	return s
}

// Get returns a mounted session.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close unmounts and deregisters a session.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	onClose := r.hooks.OnClose
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.Close()
	if onClose != nil {
		onClose(id)
	}
	r.log.Debug("autocomplete session closed", "session_id", id.String())
	return nil
}

// Len reports the number of mounted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle since before now-idleTTL and returns how many
// were closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.RLock()
	expired := make([]uuid.UUID, 0)
	for id, s := range r.sessions {
		if s.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if err := r.Close(id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		r.log.Info("expired idle autocomplete sessions", "count", closed)
	}
	return closed
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}
	interval := r.idleTTL / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.opts.Clock.Now())
		}
	}
}

// Shutdown closes every mounted session.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Close(id)
	}
}
