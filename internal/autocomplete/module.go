// Package autocomplete provides the address autocomplete domain module:
// server-side widget sessions driven over HTTP and observed over SSE.
package autocomplete

import (
	"context"
	"time"

	"fastfood_delivery_backend/internal/autocomplete/handler"
	"fastfood_delivery_backend/internal/autocomplete/session"
	"fastfood_delivery_backend/internal/autocomplete/stream"
	"fastfood_delivery_backend/internal/autocomplete/transport"
	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/internal/geocode"
	apphttp "fastfood_delivery_backend/internal/http"
	"fastfood_delivery_backend/platform/config"
	"fastfood_delivery_backend/platform/logger"
	"fastfood_delivery_backend/platform/validator"

	"github.com/google/uuid"
)

// ModuleConfig is the config slice the module reads.
type ModuleConfig interface {
	config.AutocompleteConfig
	GetAcceptLanguages() []string
	GetGeocodingTimeout() time.Duration
}

// Module is the autocomplete bounded context.
type Module struct {
	registry *session.Registry
	hub      *stream.Hub
	handler  *handler.Handler
	bus      events.Publisher
	log      *logger.Logger
}

// NewModule wires sessions to the geocoder, the SSE hub and the event bus.
func NewModule(searcher session.Searcher, cfg ModuleConfig, bus events.Publisher, val *validator.Validator, log *logger.Logger) *Module {
	opts := session.Options{
		Debounce:       cfg.GetDebounceDelay(),
		MinQueryLength: cfg.GetMinQueryLength(),
		Limit:          cfg.GetSuggestionLimit(),
		Languages:      cfg.GetAcceptLanguages(),
		RequestTimeout: cfg.GetGeocodingTimeout(),
	}
	registry := session.NewRegistry(searcher, opts, cfg.GetSessionIdleTTL(), log)
	hub := stream.NewHub(log, 0)

	m := &Module{
		registry: registry,
		hub:      hub,
		handler:  handler.New(registry, hub, val),
		bus:      bus,
		log:      log,
	}
	registry.SetHooks(session.Hooks{
		OnOpen:     m.onOpen,
		OnChange:   m.onChange,
		OnSnapshot: m.onSnapshot,
		OnClose:    m.onClose,
	})
	return m
}

func (m *Module) Name() string {
	return "autocomplete"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.RateLimited.Group("/autocomplete/sessions"))
	ctx.V1.GET("/autocomplete/sessions/:id/events", m.handler.Events)
}

// Registry exposes the session registry to the composition root.
func (m *Module) Registry() *session.Registry {
	return m.registry
}

// Run expires idle sessions until ctx is cancelled.
func (m *Module) Run(ctx context.Context) {
	m.registry.Run(ctx)
}

// Shutdown unmounts every session and ends every stream.
func (m *Module) Shutdown() {
	m.registry.Shutdown()
	m.hub.Close()
}

// RegisterHandlers subscribes to the events this module audits.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.AddressChanged{}.EventName(), m)
}

// Handle logs confirmed address selections.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	changed, ok := event.(events.AddressChanged)
	if !ok || !changed.Confirmed() {
		return nil
	}
	m.log.WithSessionID(changed.SessionID.String()).Info("address confirmed",
		"display_name", changed.Address.DisplayName,
		"locality", changed.Address.Locality,
		"region", changed.Address.Region,
	)
	return nil
}

func (m *Module) onOpen(snap session.Snapshot) {
	m.bus.Publish(context.Background(), events.AutocompleteSessionOpened{
		BaseEvent:   events.NewBaseEvent(),
		SessionID:   snap.ID,
		CountryCode: snap.Props.CountryCode,
	})
}

func (m *Module) onChange(id uuid.UUID, text string, addr *geocode.ParsedAddress) {
	m.hub.Publish(id, stream.EventChange, transport.ChangeEvent{Text: text, Address: addr})
	m.bus.Publish(context.Background(), events.AddressChanged{
		BaseEvent: events.NewBaseEvent(),
		SessionID: id,
		Text:      text,
		Address:   addr,
	})
}

func (m *Module) onSnapshot(snap session.Snapshot) {
	m.hub.PublishState(snap.ID, snap.Version, snap)
}

func (m *Module) onClose(id uuid.UUID) {
	m.hub.CloseSession(id)
	m.bus.Publish(context.Background(), events.AutocompleteSessionClosed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: id,
	})
}

var _ apphttp.Module = (*Module)(nil)
