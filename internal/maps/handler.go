package maps

import (
	"net/http"

	"fastfood_delivery_backend/platform/httpkit"
	"fastfood_delivery_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler exposes the maps lookup endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// LookupAddress handles GET /api/v1/maps/address-lookup?q=...
func (h *Handler) LookupAddress(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	results, err := h.svc.SearchAddress(c.Request.Context(), req.Query, req.Country, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, results)
}

// VerifyAddress handles POST /api/v1/maps/verify. Unverifiable addresses are
// a normal 200 response with isValid=false.
func (h *Handler) VerifyAddress(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.Verify(c.Request.Context(), req))
}

// ReverseGeocode handles GET /api/v1/maps/reverse?lat=...&lon=...
func (h *Handler) ReverseGeocode(c *gin.Context) {
	var req ReverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Reverse(c.Request.Context(), *req.Lat, *req.Lon)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
