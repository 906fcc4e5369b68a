package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/httpx"
	"kantin/internal/logger"
)

// Handler exposes the public catalog and the vendor menu endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// List handles GET /menus.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := httpx.Pagination(r)
	f := Filter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := r.URL.Query().Get("vendor_id"); raw != "" {
		f.VendorID, _ = strconv.ParseInt(raw, 10, 64)
	}

	menus, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logger.Error("menus_list_failed", httpx.RequestID(r), "request failed", err, nil)
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", menus)
}

// Popular handles GET /menus/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	menus, err := h.service.Popular(r.Context())
	if err != nil {
		h.logger.Error("menus_popular_failed", httpx.RequestID(r), "request failed", err, nil)
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", menus)
}

// Get handles GET /menus/:id. The reserved segment "popular" dispatches
// to the popular listing because the router cannot mix static and
// wildcard children under /menus.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == "popular" {
		h.Popular(w, r, ps)
		return
	}
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("menu not found"))
		return
	}

	menu, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", menu)
}

// ListOwn handles GET /vendor/menus.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	menus, err := h.service.VendorMenus(r.Context(), principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", menus)
}

// Create handles POST /vendor/menus.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req MenuRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	menu, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	h.logger.Info("menu_created", httpx.RequestID(r), "Menu created", map[string]any{
		"menu_id":   menu.ID,
		"vendor_id": principal.UserID,
	})
	httpx.OK(w, http.StatusCreated, "menu created", menu)
}

// Update handles PUT /vendor/menus/:id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("menu not found"))
		return
	}

	var req MenuRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	menu, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "menu updated", menu)
}

// Delete handles DELETE /vendor/menus/:id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("menu not found"))
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		httpx.Error(w, err)
		return
	}

	h.logger.Info("menu_deleted", httpx.RequestID(r), "Menu deleted", map[string]any{
		"menu_id":   id,
		"vendor_id": principal.UserID,
	})
	httpx.OK(w, http.StatusOK, "menu deleted", nil)
}

// ToggleAvailability handles PATCH /vendor/menus/:id/availability.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		httpx.Error(w, apperr.NotFound("menu not found"))
		return
	}

	var req AvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	menu, err := h.service.ToggleAvailability(r.Context(), principal, id, &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "menu availability updated", menu)
}
