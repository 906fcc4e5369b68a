// Package router assembles the HTTP surface: routes, auth gates, request
// logging, security headers and CORS.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"kantin/internal/auth"
	"kantin/internal/httpx"
	"kantin/internal/logger"
	"kantin/internal/models"
	"kantin/internal/services/account"
	"kantin/internal/services/admin"
	"kantin/internal/services/catalog"
	"kantin/internal/services/checkout"
	"kantin/internal/services/vendor"
)

// Handlers collects every service handler the router mounts.
type Handlers struct {
	Account  *account.Handler
	Catalog  *catalog.Handler
	Checkout *checkout.Handler
	Vendor   *vendor.Handler
	Admin    *admin.Handler
}

// Pinger is what the health endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New builds the full route table wrapped in the middleware chain.
func New(h Handlers, mw *auth.Middleware, db Pinger, log *logger.Logger) http.Handler {
	r := httprouter.New()

	wrap := func(next httprouter.Handle) httprouter.Handle {
		return logRequests(log, next)
	}

	// Public.
	r.GET("/health", wrap(healthHandler(db)))
	r.POST("/register", wrap(h.Account.Register))
	r.POST("/login", wrap(h.Account.Login))
	r.GET("/menus", wrap(h.Catalog.List))
	// httprouter cannot mix static and wildcard children, so
	// /menus/popular dispatches inside Get.
	r.GET("/menus/:id", wrap(h.Catalog.Get))
	r.GET("/vendors", wrap(h.Vendor.Directory))
	r.GET("/vendors/:id", wrap(h.Vendor.Detail))

	// Any authenticated user.
	r.GET("/me", wrap(mw.Authenticate(h.Account.Me)))
	r.PUT("/me", wrap(mw.Authenticate(h.Account.UpdateMe)))

	// Students.
	r.POST("/orders", wrap(mw.Require(models.RoleStudent, h.Checkout.Create)))
	r.GET("/orders", wrap(mw.Require(models.RoleStudent, h.Checkout.ListMine)))
	r.GET("/orders/:id", wrap(mw.Authenticate(h.Checkout.Get)))

	// Vendors. Reads work before approval; publishing does not.
	r.GET("/vendor/profile", wrap(mw.Require(models.RoleVendor, h.Vendor.Profile)))
	r.PUT("/vendor/profile", wrap(mw.Require(models.RoleVendor, h.Vendor.UpdateProfile)))
	r.GET("/vendor/stats", wrap(mw.Require(models.RoleVendor, h.Vendor.Stats)))
	r.GET("/vendor/menus", wrap(mw.Require(models.RoleVendor, h.Catalog.ListOwn)))
	r.GET("/vendor/orders", wrap(mw.Require(models.RoleVendor, h.Checkout.ListIncoming)))
	r.POST("/vendor/menus", wrap(mw.RequireApprovedVendor(h.Catalog.Create)))
	r.PUT("/vendor/menus/:id", wrap(mw.RequireApprovedVendor(h.Catalog.Update)))
	r.DELETE("/vendor/menus/:id", wrap(mw.RequireApprovedVendor(h.Catalog.Delete)))
	r.PATCH("/vendor/menus/:id/availability", wrap(mw.RequireApprovedVendor(h.Catalog.ToggleAvailability)))
	r.PUT("/orders/:id/status", wrap(mw.RequireApprovedVendor(h.Checkout.UpdateStatus)))

	// Admins.
	r.GET("/admin/users", wrap(mw.Require(models.RoleAdmin, h.Admin.Users)))
	r.GET("/admin/users/:id", wrap(mw.Require(models.RoleAdmin, h.Admin.User)))
	r.POST("/admin/users/:id/toggle-active", wrap(mw.Require(models.RoleAdmin, h.Admin.ToggleActive)))
	r.GET("/admin/vendors/pending", wrap(mw.Require(models.RoleAdmin, h.Admin.PendingVendors)))
	r.POST("/admin/vendors/:id/approve", wrap(mw.Require(models.RoleAdmin, h.Admin.ApproveVendor)))
	r.DELETE("/admin/vendors/:id/reject", wrap(mw.Require(models.RoleAdmin, h.Admin.RejectVendor)))
	r.GET("/admin/stats", wrap(mw.Require(models.RoleAdmin, h.Admin.Stats)))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(securityHeaders(r))
}

func healthHandler(db Pinger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := db.Ping(r.Context()); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, httpx.Envelope{
				Success: false,
				Message: "database unreachable",
			})
			return
		}
		httpx.OK(w, http.StatusOK, "ok", nil)
	}
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// logRequests assigns each request an id and logs its completion with
// status and duration.
func logRequests(log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := logger.GenerateRequestID()
		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next(rec, r.WithContext(ctx), ps)

		log.Info("request_completed", requestID, "Request handled", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
