package admin

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/httpx"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// Handler exposes the admin endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Users handles GET /admin/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	limit, offset := httpx.Pagination(r)
	f := UserFilter{
		Role:   models.Role(r.URL.Query().Get("role")),
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	users, err := h.service.Users(r.Context(), principal, f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", users)
}

// User handles GET /admin/users/:id.
func (h *Handler) User(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("user not found"))
		return
	}

	user, err := h.service.User(r.Context(), principal, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", user)
}

// ToggleActive handles POST /admin/users/:id/toggle-active.
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("user not found"))
		return
	}

	user, err := h.service.ToggleActive(r.Context(), principal, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	h.logger.Info("user_toggled", httpx.RequestID(r), "User active flag toggled", map[string]any{
		"user_id":   id,
		"is_active": user.IsActive,
		"admin_id":  principal.UserID,
	})
	httpx.OK(w, http.StatusOK, "user updated", user)
}

// PendingVendors handles GET /admin/vendors/pending.
func (h *Handler) PendingVendors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	vendors, err := h.service.PendingVendors(r.Context(), principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", vendors)
}

// ApproveVendor handles POST /admin/vendors/:id/approve.
func (h *Handler) ApproveVendor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("vendor not found"))
		return
	}

	vendor, err := h.service.ApproveVendor(r.Context(), principal, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "vendor approved", vendor)
}

// RejectVendor handles DELETE /admin/vendors/:id/reject.
func (h *Handler) RejectVendor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("vendor not found"))
		return
	}

	if err := h.service.RejectVendor(r.Context(), principal, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "vendor application rejected", nil)
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	stats, err := h.service.Stats(r.Context(), principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", stats)
}
