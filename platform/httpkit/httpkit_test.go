package httpkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fastfood_delivery_backend/platform/apperr"
	"fastfood_delivery_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagation(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Body.String() != "req-123" || w.Header().Get(HeaderRequestID) != "req-123" {
		t.Fatalf("inbound id not reused: body=%q header=%q", w.Body.String(), w.Header().Get(HeaderRequestID))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLength+1))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); len(got) != 36 {
		t.Fatalf("oversized id should be replaced by a uuid, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header: %v", w.Header())
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewPerMinuteLimiter(2, logger.Nop())
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if fmt.Sprint(codes) != "[200 200 429]" {
		t.Fatalf("codes = %v", codes)
	}

	if dropped := limiter.Prune(time.Hour); dropped != 0 {
		t.Fatalf("recent visitor pruned: %d", dropped)
	}
	if dropped := limiter.Prune(-time.Second); dropped != 1 {
		t.Fatalf("idle visitor not pruned: %d", dropped)
	}
}

func (i *IPRateLimiter) visitorCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.visitors)
}

func TestRunPrunerDropsIdleVisitors(t *testing.T) {
	limiter := NewPerMinuteLimiter(60, logger.Nop())
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, ip := range []string{"203.0.113.7:4000", "198.51.100.20:4000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip
		engine.ServeHTTP(httptest.NewRecorder(), req)
	}
	if n := limiter.visitorCount(); n != 2 {
		t.Fatalf("visitors = %d, want 2", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.RunPruner(ctx, 5*time.Millisecond, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for limiter.visitorCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("visitors = %d after pruning, want 0", limiter.visitorCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop on cancellation")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := NewPerMinuteLimiter(0, logger.Nop())
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", apperr.NotFound("session not found"), http.StatusNotFound, "session not found"},
		{"wrapped conflict", fmt.Errorf("select: %w", apperr.Conflict("session is disabled")), http.StatusConflict, "session is disabled"},
		{"upstream", apperr.Upstream("geocoder unavailable", errors.New("503")), http.StatusBadGateway, "geocoder unavailable"},
		{"untyped", errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if !HandleError(c, tt.err) {
				t.Fatal("expected error to be handled")
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if w.Code != tt.wantStatus || body.Error != tt.wantError {
				t.Fatalf("got %d %q, want %d %q", w.Code, body.Error, tt.wantStatus, tt.wantError)
			}
		})
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if HandleError(c, nil) {
		t.Fatal("nil error reported as handled")
	}
}
