package auth

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kantin/internal/apperr"
	"kantin/internal/httpx"
	"kantin/internal/models"
)

// UserLoader fetches a user by id. The middleware re-reads the user on
// every request so approval flips and deactivation take effect without
// re-login.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware authenticates requests and enforces role preconditions.
type Middleware struct {
	secret string
	users  UserLoader
}

func NewMiddleware(secret string, users UserLoader) *Middleware {
	return &Middleware{secret: secret, users: users}
}

// Authenticate parses the Bearer token, loads the user and stores the
// resulting principal in the request context.
func (m *Middleware) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httpx.Error(w, apperr.Unauthorized("missing or invalid authorization header"))
			return
		}

		userID, err := ParseToken(m.secret, token)
		if err != nil {
			httpx.Error(w, apperr.Unauthorized("invalid token"))
			return
		}

		user, err := m.users.UserByID(r.Context(), userID)
		if err != nil {
			httpx.Error(w, apperr.Persistence(err))
			return
		}
		if user == nil {
			httpx.Error(w, apperr.Unauthorized("unknown user"))
			return
		}
		if !user.IsActive {
			httpx.Error(w, apperr.Authorization("account is deactivated"))
			return
		}

		p := &Principal{
			UserID:   user.ID,
			Name:     user.Name,
			Role:     user.Role,
			Approved: user.IsApprovedVendor(),
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), p)), ps)
	}
}

// Require authenticates and then rejects callers whose role differs.
func (m *Middleware) Require(role models.Role, next httprouter.Handle) httprouter.Handle {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, ok := FromContext(r.Context())
		if !ok || p.Role != role {
			httpx.Error(w, apperr.Authorization("insufficient role for this action"))
			return
		}
		next(w, r, ps)
	})
}

// RequireApprovedVendor authenticates and only lets approved vendors
// through. Unapproved vendors may read their own data but cannot publish
// menus or touch orders.
func (m *Middleware) RequireApprovedVendor(next httprouter.Handle) httprouter.Handle {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, ok := FromContext(r.Context())
		if !ok || p.Role != models.RoleVendor {
			httpx.Error(w, apperr.Authorization("insufficient role for this action"))
			return
		}
		if !p.Approved {
			httpx.Error(w, apperr.Authorization("vendor account is awaiting admin approval"))
			return
		}
		next(w, r, ps)
	})
}
