// Package stream pushes autocomplete session updates to browsers over
// Server-Sent Events.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fastfood_delivery_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType names an SSE event.
type EventType string

const (
	// EventState carries a full session snapshot.
	EventState EventType = "state"
	// EventChange carries a text/address change reported to the host form.
	EventChange EventType = "change"
	// EventClosed tells the client the session is gone; the stream ends after it.
	EventClosed EventType = "closed"

	eventConnected EventType = "connected"
	eventPing      EventType = "ping"
)

const (
	clientBuffer             = 32
	DefaultHeartbeatInterval = 20 * time.Second
)

// Event is one SSE message. Version orders state events of a session and is
// zero for every other type.
type Event struct {
	Type      EventType   `json:"type"`
	SessionID uuid.UUID   `json:"sessionId"`
	Version   uint64      `json:"version,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// InitialState supplies the state a new stream starts from.
type InitialState func() (version uint64, data interface{})

type client struct {
	sessionID uuid.UUID
	events    chan Event
	done      chan struct{}
	once      sync.Once
	// lastState is the newest state version written; owned by Serve.
	lastState uint64
}

// stale reports whether a state event is not newer than what the browser
// already rendered.
func (c *client) stale(e Event) bool {
	return e.Type == EventState && e.Version != 0 && e.Version <= c.lastState
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans session events out to every stream watching that session.
type Hub struct {
	log       *logger.Logger
	heartbeat time.Duration

	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
}

// NewHub creates a hub. A non-positive heartbeat uses the default.
func NewHub(log *logger.Logger, heartbeat time.Duration) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &Hub{
		log:       log,
		heartbeat: heartbeat,
		clients:   make(map[uuid.UUID][]*client),
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.sessionID] = append(h.clients[c.sessionID], c)
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.sessionID]
	for i, cl := range clients {
		if cl == c {
			h.clients[c.sessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.clients[c.sessionID]) == 0 {
		delete(h.clients, c.sessionID)
	}
	c.stop()
}

// Clients reports how many streams watch a session.
func (h *Hub) Clients(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Publish sends an event to every stream of a session. Slow clients lose the
// event rather than block the publisher.
func (h *Hub) Publish(sessionID uuid.UUID, eventType EventType, data interface{}) {
	h.publish(Event{Type: eventType, SessionID: sessionID, Data: data})
}

func (h *Hub) publish(event Event) {
	sessionID, eventType := event.SessionID, event.Type

	h.mu.RLock()
	clients := make([]*client, len(h.clients[sessionID]))
	copy(clients, h.clients[sessionID])
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.events <- event:
		case <-c.done:
		default:
			h.log.Warn("sse buffer full, dropping event", "session_id", sessionID.String(), "event", string(eventType))
		}
	}
}

// PublishState sends a versioned state snapshot. Streams skip snapshots older
// than the last one they wrote, whatever order publishers race in.
func (h *Hub) PublishState(sessionID uuid.UUID, version uint64, data interface{}) {
	h.publish(Event{Type: EventState, SessionID: sessionID, Version: version, Data: data})
}

// CloseSession sends a closed event to the session's streams and ends them.
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.Publish(sessionID, EventClosed, nil)

	h.mu.Lock()
	clients := h.clients[sessionID]
	delete(h.clients, sessionID)
	h.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

// Serve streams a session's events on the request until the client goes
// away or the session is closed. initial is read once the stream is
// registered, so nothing published in between is lost, and is sent as the
// first state event.
func (h *Hub) Serve(c *gin.Context, sessionID uuid.UUID, initial InitialState) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	cl := &client{
		sessionID: sessionID,
		events:    make(chan Event, clientBuffer),
		done:      make(chan struct{}),
	}
	h.addClient(cl)
	defer h.removeClient(cl)

	log := h.log.WithSessionID(sessionID.String())
	log.Debug("sse client connected")

	h.write(c, Event{Type: eventConnected, SessionID: sessionID})
	if initial != nil {
		version, data := initial()
		h.send(c, cl, Event{Type: EventState, SessionID: sessionID, Version: version, Data: data})
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			log.Debug("sse client disconnected")
			return
		case <-ticker.C:
			h.write(c, Event{Type: eventPing, SessionID: sessionID})
		case event := <-cl.events:
			h.send(c, cl, event)
			if event.Type == EventClosed {
				return
			}
		case <-cl.done:
			h.drain(c, cl)
			return
		}
	}
}

// drain flushes events queued before the client was stopped, so a closed
// event published just before CloseSession still reaches the browser.
func (h *Hub) drain(c *gin.Context, cl *client) {
	for {
		select {
		case event := <-cl.events:
			h.send(c, cl, event)
		default:
			return
		}
	}
}

func (h *Hub) send(c *gin.Context, cl *client, event Event) {
	if cl.stale(event) {
		return
	}
	if event.Type == EventState {
		cl.lastState = event.Version
	}
	h.write(c, event)
}

func (h *Hub) write(c *gin.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode sse event", "event", string(event.Type), "error", err)
		return
	}
	c.SSEvent(string(event.Type), string(data))
	c.Writer.Flush()
}

// Close ends every stream.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uuid.UUID][]*client)
	h.mu.Unlock()

	for _, clients := range all {
		for _, c := range clients {
			c.stop()
		}
	}
}
