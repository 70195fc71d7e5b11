package autocomplete

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fastfood_delivery_backend/internal/autocomplete/session"
	"fastfood_delivery_backend/internal/autocomplete/transport"
	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/internal/geocode"
	apphttp "fastfood_delivery_backend/internal/http"
	"fastfood_delivery_backend/internal/http/router"
	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/logger"
	"fastfood_delivery_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubSearcher struct {
	results []geocode.Suggestion
}

func (s stubSearcher) Search(context.Context, geocode.SearchQuery) ([]geocode.Suggestion, error) {
	return s.results, nil
}

type testEnv struct {
	engine *gin.Engine
	module *Module
	bus    *events.InMemoryBus

	mu      sync.Mutex
	changes []events.AddressChanged
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CORSOrigins:     []string{"http://localhost:5173"},
		DebounceDelay:   10 * time.Millisecond,
		MinQueryLength:  5,
		SuggestionLimit: 8,
		AcceptLanguages: []string{"vi", "en"},
		SessionIdleTTL:  time.Minute,
	}
	searcher := stubSearcher{results: []geocode.Suggestion{
		{ID: "1", DisplayName: "12 Nguyễn Huệ, Bến Nghé", Lat: "10.77", Lon: "106.70",
			Address: geocode.AddressParts{HouseNumber: "12", Road: "Nguyễn Huệ", Suburb: "Bến Nghé", City: "Hồ Chí Minh"}},
		{ID: "2", DisplayName: "14 Nguyễn Huệ, Bến Nghé", Lat: "10.78", Lon: "106.71",
			Address: geocode.AddressParts{HouseNumber: "14", Road: "Nguyễn Huệ", Suburb: "Bến Nghé", City: "Hồ Chí Minh"}},
	}}

	log := logger.Nop()
	bus := events.NewInMemoryBus(log)
	env := &testEnv{bus: bus}
	bus.Subscribe(events.AddressChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.changes = append(env.changes, e.(events.AddressChanged))
		return nil
	}))

	env.module = NewModule(searcher, cfg, bus, validator.New(), log)
	env.module.RegisterHandlers(bus)
	t.Cleanup(env.module.Shutdown)

	env.engine = router.New(&apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: bus,
		Modules:  []apphttp.Module{env.module},
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) waitForState(t *testing.T, base string, want session.State) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		w := e.do(t, http.MethodGet, base, nil)
		snap := decode[session.Snapshot](t, w)
		if snap.State == want {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("state = %q, want %q", snap.State, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/autocomplete/sessions", transport.OpenSessionRequest{})
	if w.Code != http.StatusCreated {
		t.Fatalf("open status = %d: %s", w.Code, w.Body.String())
	}
	opened := decode[session.Snapshot](t, w)
	if opened.State != session.StateIdle || opened.Props.CountryCode != "vn" {
		t.Fatalf("opened = %+v", opened)
	}
	base := "/api/v1/autocomplete/sessions/" + opened.ID.String()

	w = env.do(t, http.MethodPost, base+"/input", transport.InputRequest{Text: "12 Nguyen Hue"})
	if w.Code != http.StatusOK || decode[session.Snapshot](t, w).State != session.StateDebouncing {
		t.Fatalf("input = %d: %s", w.Code, w.Body.String())
	}

	snap := env.waitForState(t, base, session.StateShowing)
	if !snap.DropdownOpen || len(snap.Suggestions) != 2 {
		t.Fatalf("showing snapshot = %+v", snap)
	}

	for _, key := range []string{"ArrowDown", "ArrowDown"} {
		w = env.do(t, http.MethodPost, base+"/keys", transport.KeyRequest{Key: key})
		if !decode[transport.KeyResponse](t, w).PreventDefault {
			t.Fatalf("%s not consumed", key)
		}
	}
	w = env.do(t, http.MethodPost, base+"/keys", transport.KeyRequest{Key: "Enter"})
	selected := decode[transport.KeyResponse](t, w).Session
	if !selected.HasUserSelected || selected.SelectedAddress == nil || selected.SelectedAddress.StreetAddress != "14 Nguyễn Huệ" {
		t.Fatalf("after enter = %+v", selected)
	}

	w = env.do(t, http.MethodDelete, base, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", w.Code)
	}

	env.bus.Wait()
	env.mu.Lock()
	defer env.mu.Unlock()
	confirmed := 0
	for _, c := range env.changes {
		if c.Confirmed() {
			confirmed++
			if c.SessionID != opened.ID || c.Address.StreetAddress != "14 Nguyễn Huệ" {
				t.Fatalf("confirmed change = %+v", c)
			}
		}
	}
	if confirmed != 1 {
		t.Fatalf("confirmed changes = %d, want 1", confirmed)
	}
}

func TestSessionRequestValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/autocomplete/sessions", transport.OpenSessionRequest{
		Props: transport.Props{CountryCode: "v1"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad country status = %d", w.Code)
	}

	if w = env.do(t, http.MethodGet, "/api/v1/autocomplete/sessions/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, "/api/v1/autocomplete/sessions/00000000-0000-0000-0000-000000000001", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/autocomplete/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open without body = %d: %s", w.Code, w.Body.String())
	}
	base := "/api/v1/autocomplete/sessions/" + decode[session.Snapshot](t, w).ID.String()

	if w = env.do(t, http.MethodPost, base+"/select", map[string]int{"index": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("select without suggestions = %d", w.Code)
	}
	if w = env.do(t, http.MethodPost, base+"/select", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("select without index = %d", w.Code)
	}
	if w = env.do(t, http.MethodPost, base+"/keys", transport.KeyRequest{Key: "ArrowDown"}); decode[transport.KeyResponse](t, w).PreventDefault {
		t.Fatal("key consumed with closed dropdown")
	}

	w = env.do(t, http.MethodPut, base+"/props", transport.Props{Value: "Chợ Bến Thành", Disabled: true})
	snap := decode[session.Snapshot](t, w)
	if snap.Text != "Chợ Bến Thành" || !snap.Props.Disabled || snap.State != session.StateIdle {
		t.Fatalf("after props = %+v", snap)
	}
	if w = env.do(t, http.MethodPost, base+"/select", map[string]int{"index": 0}); w.Code != http.StatusConflict {
		t.Fatalf("select on disabled = %d", w.Code)
	}
}

func TestClearFocusAndOutsideOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/autocomplete/sessions", transport.OpenSessionRequest{})
	base := "/api/v1/autocomplete/sessions/" + decode[session.Snapshot](t, w).ID.String()

	env.do(t, http.MethodPost, base+"/input", transport.InputRequest{Text: "Nguyen Hue"})
	env.waitForState(t, base, session.StateShowing)

	snap := decode[session.Snapshot](t, env.do(t, http.MethodPost, base+"/outside", nil))
	if snap.DropdownOpen || len(snap.Suggestions) != 2 {
		t.Fatalf("after outside = %+v", snap)
	}
	snap = decode[session.Snapshot](t, env.do(t, http.MethodPost, base+"/focus", nil))
	if !snap.DropdownOpen {
		t.Fatal("focus did not reopen the dropdown")
	}
	snap = decode[session.Snapshot](t, env.do(t, http.MethodPost, base+"/clear", nil))
	if snap.Text != "" || snap.DropdownOpen || !snap.Focused || snap.State != session.StateIdle {
		t.Fatalf("after clear = %+v", snap)
	}
}
