package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fastfood_delivery_backend/internal/geocode"

	"github.com/google/uuid"
)

func TestRegistryOpenGetClose(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(&fakeSearcher{}, Options{Clock: clock, Dispatch: synchronous}, time.Minute, nil)

	var closed []uuid.UUID
	reg.SetHooks(Hooks{OnClose: func(id uuid.UUID) { closed = append(closed, id) }})

	s := reg.Open(Props{CountryCode: "VN"})
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}

	got, err := reg.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get = (%v, %v), want the opened session", got, err)
	}

	if err := reg.Close(s.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.Closed() {
		t.Fatal("session not closed")
	}
	if len(closed) != 1 || closed[0] != s.ID() {
		t.Fatalf("OnClose calls = %v", closed)
	}

	if _, err := reg.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after close = %v, want ErrNotFound", err)
	}
	if err := reg.Close(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Close = %v, want ErrNotFound", err)
	}
}

func TestRegistryHooksCarrySessionID(t *testing.T) {
	clock := newFakeClock()
	searcher := &fakeSearcher{results: []geocode.Suggestion{candidate("3", "Điện Biên Phủ", "Đa Kao")}}
	reg := NewRegistry(searcher, Options{Clock: clock, Dispatch: synchronous}, 0, nil)

	var mu sync.Mutex
	var changes []uuid.UUID
	var snapshots int
	reg.SetHooks(Hooks{
		OnChange: func(id uuid.UUID, text string, addr *geocode.ParsedAddress) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, id)
		},
		OnSnapshot: func(Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			snapshots++
		},
	})

	s := reg.Open(Props{})
	s.Input("3 Dien Bien Phu")
	clock.Advance(DefaultDebounce)
	if err := s.Select(0); err != nil {
		t.Fatalf("Select: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 {
		t.Fatalf("change hooks = %d, want 2", len(changes))
	}
	for _, id := range changes {
		if id != s.ID() {
			t.Fatalf("hook id = %s, want %s", id, s.ID())
		}
	}
	if snapshots == 0 {
		t.Fatal("snapshot hook never called")
	}
}

func TestRegistrySweepExpiresIdleSessions(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(&fakeSearcher{}, Options{Clock: clock, Dispatch: synchronous}, 10*time.Minute, nil)

	stale := reg.Open(Props{})
	clock.Advance(8 * time.Minute)
	fresh := reg.Open(Props{})
	clock.Advance(4 * time.Minute)

	if n := reg.Sweep(clock.Now()); n != 1 {
		t.Fatalf("Sweep closed %d, want 1", n)
	}
	if !stale.Closed() || fresh.Closed() {
		t.Fatalf("stale closed = %v, fresh closed = %v", stale.Closed(), fresh.Closed())
	}

	// Interaction refreshes the idle clock.
	clock.Advance(5 * time.Minute)
	fresh.Focus()
	clock.Advance(6 * time.Minute)
	if n := reg.Sweep(clock.Now()); n != 0 {
		t.Fatalf("Sweep closed %d active sessions", n)
	}
}

func TestRegistryShutdownClosesEverything(t *testing.T) {
	reg := NewRegistry(&fakeSearcher{}, Options{Clock: newFakeClock()}, time.Minute, nil)
	sessions := []*Session{reg.Open(Props{}), reg.Open(Props{}), reg.Open(Props{})}

	reg.Shutdown()

	if reg.Len() != 0 {
		t.Fatalf("Len after shutdown = %d", reg.Len())
	}
	for _, s := range sessions {
		if !s.Closed() {
			t.Fatalf("session %s still open", s.ID())
		}
	}
}
