package maps

import (
	"fastfood_delivery_backend/internal/events"
	"fastfood_delivery_backend/internal/geocode"
	apphttp "fastfood_delivery_backend/internal/http"
	"fastfood_delivery_backend/platform/logger"
	"fastfood_delivery_backend/platform/validator"
)

// Module wires the maps address lookup HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(provider geocode.Provider, verifier *geocode.Verifier, bus events.Publisher, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(provider, verifier, bus, cfg, log)
	h := NewHandler(svc, val)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.RateLimited.Group("/maps")
	group.GET("/address-lookup", m.handler.LookupAddress)
	group.POST("/verify", m.handler.VerifyAddress)
	group.GET("/reverse", m.handler.ReverseGeocode)
}

var _ apphttp.Module = (*Module)(nil)
