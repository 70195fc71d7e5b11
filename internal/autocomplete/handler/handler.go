package handler

import (
	"errors"
	"io"
	"net/http"

	"fastfood_delivery_backend/internal/autocomplete/session"
	"fastfood_delivery_backend/internal/autocomplete/stream"
	"fastfood_delivery_backend/internal/autocomplete/transport"
	"fastfood_delivery_backend/platform/httpkit"
	"fastfood_delivery_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	paramID             = "id"
)

// Handler translates browser events into session operations.
type Handler struct {
	registry *session.Registry
	hub      *stream.Hub
	val      *validator.Validator
}

func New(registry *session.Registry, hub *stream.Hub, val *validator.Validator) *Handler {
	return &Handler{registry: registry, hub: hub, val: val}
}

// RegisterRoutes mounts the command routes. Events is mounted separately so
// the long-lived stream stays outside the request rate limit.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Open)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Close)
	rg.POST("/:id/input", h.Input)
	rg.POST("/:id/keys", h.KeyDown)
	rg.POST("/:id/select", h.Select)
	rg.POST("/:id/clear", h.Clear)
	rg.POST("/:id/focus", h.Focus)
	rg.POST("/:id/outside", h.PointerDownOutside)
	rg.PUT("/:id/props", h.SetProps)
}

// Open handles POST /api/v1/autocomplete/sessions. The body is optional.
func (h *Handler) Open(c *gin.Context) {
	var req transport.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s := h.registry.Open(req.ToSession())
	httpkit.Created(c, s.Snapshot())
}

func (h *Handler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	httpkit.OK(c, s.Snapshot())
}

func (h *Handler) Close(c *gin.Context) {
	id, ok := httpkit.UUIDParam(c, paramID)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.registry.Close(id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) Input(c *gin.Context) {
	var req transport.InputRequest
	if !h.bind(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Input(req.Text)
	httpkit.OK(c, s.Snapshot())
}

func (h *Handler) KeyDown(c *gin.Context) {
	var req transport.KeyRequest
	if !h.bind(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	consumed := s.KeyDown(session.Key(req.Key))
	httpkit.OK(c, transport.KeyResponse{PreventDefault: consumed, Session: s.Snapshot()})
}

func (h *Handler) Select(c *gin.Context) {
	var req transport.SelectRequest
	if !h.bind(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, s.Select(*req.Index)) {
		return
	}
	httpkit.OK(c, s.Snapshot())
}

func (h *Handler) Clear(c *gin.Context) {
	h.simple(c, (*session.Session).Clear)
}

func (h *Handler) Focus(c *gin.Context) {
	h.simple(c, (*session.Session).Focus)
}

func (h *Handler) PointerDownOutside(c *gin.Context) {
	h.simple(c, (*session.Session).PointerDownOutside)
}

func (h *Handler) SetProps(c *gin.Context) {
	var req transport.Props
	if !h.bind(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.SetProps(req.ToSession())
	httpkit.OK(c, s.Snapshot())
}

// Events handles GET /api/v1/autocomplete/sessions/:id/events.
func (h *Handler) Events(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.hub.Serve(c, s.ID(), func() (uint64, interface{}) {
		snap := s.Snapshot()
		return snap.Version, snap
	})
}

func (h *Handler) simple(c *gin.Context, op func(*session.Session)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	op(s)
	httpkit.OK(c, s.Snapshot())
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	id, ok := httpkit.UUIDParam(c, paramID)
	if !ok {
		return nil, false
	}
	s, err := h.registry.Get(id)
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	return s, true
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
