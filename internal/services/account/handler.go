package account

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/httpx"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// Handler exposes registration, login and profile endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RegisterRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	h.logger.Info("user_registered", httpx.RequestID(r), "User registered", map[string]any{
		"user_id": result.User.ID,
		"role":    result.User.Role,
	})

	message := "registration successful"
	if result.User.Role == models.RoleVendor {
		message = "registration successful, your vendor account awaits admin approval"
	}
	httpx.OK(w, http.StatusCreated, message, result)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.logger.Debug("login_failed", httpx.RequestID(r), err.Error(), map[string]any{
			"email": req.Email,
		})
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "login successful", result)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.Me(r.Context(), principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", user)
}

// UpdateMe handles PUT /me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req ProfileUpdateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpx.Error(w, apperr.Validation("invalid JSON body"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), principal, &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "profile updated", user)
}
