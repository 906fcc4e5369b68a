package checkout

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/httpx"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// Handler exposes the checkout and order endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Create handles POST /orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := httpx.RequestID(r)
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req CheckoutRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	orders, err := h.service.Checkout(r.Context(), principal, &req)
	if err != nil {
		h.logFailure("checkout_failed", requestID, err, map[string]any{
			"student_id": principal.UserID,
			"cart_lines": len(req.Items),
		})
		httpx.Error(w, err)
		return
	}

	h.logger.Info("checkout_completed", requestID, "Checkout created orders", map[string]any{
		"student_id": principal.UserID,
		"orders":     len(orders),
	})
	httpx.OK(w, http.StatusCreated, "order placed", orders)
}

// UpdateStatus handles PUT /orders/:id/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := httpx.RequestID(r)
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	orderID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("order not found"))
		return
	}

	var req StatusUpdateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), principal, orderID, models.OrderStatus(req.Status))
	if err != nil {
		h.logFailure("status_update_failed", requestID, err, map[string]any{
			"order_id":  orderID,
			"vendor_id": principal.UserID,
			"requested": req.Status,
		})
		httpx.Error(w, err)
		return
	}

	h.logger.Info("status_updated", requestID, "Order status updated", map[string]any{
		"order_id": orderID,
		"status":   order.Status,
	})
	httpx.OK(w, http.StatusOK, "order status updated", order)
}

// Get handles GET /orders/:id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	orderID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("order not found"))
		return
	}

	order, err := h.service.OrderByID(r.Context(), principal, orderID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", order)
}

// ListMine handles GET /orders for students.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	limit, offset := httpx.Pagination(r)
	orders, err := h.service.StudentOrders(r.Context(), principal, limit, offset)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", orders)
}

// ListIncoming handles GET /vendor/orders.
func (h *Handler) ListIncoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	limit, offset := httpx.Pagination(r)
	orders, err := h.service.VendorOrders(r.Context(), principal, limit, offset)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", orders)
}

// logFailure logs persistence errors loudly and everything else as debug;
// validation noise is not worth an error line.
func (h *Handler) logFailure(action, requestID string, err error, details map[string]any) {
	if e := apperr.From(err); e != nil && e.Kind != apperr.KindPersistence {
		h.logger.Debug(action, requestID, err.Error(), details)
		return
	}
	h.logger.Error(action, requestID, "request failed", err, details)
}

