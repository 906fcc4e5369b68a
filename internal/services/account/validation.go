package account

import (
	"strings"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// RegisterRequest is the body of POST /register. NIM is required for
// students; canteen name and location for vendors.
type RegisterRequest struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Phone       string      `json:"phone"`
	Role        models.Role `json:"role"`
	NIM         string      `json:"nim"`
	CanteenName string      `json:"canteen_name"`
	Location    string      `json:"location"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest is the body of PUT /me.
type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

func validateRegisterRequest(req *RegisterRequest) error {
	if req.Name == "" {
		return apperr.ValidationField("name", "name is required")
	}
	if req.Email == "" {
		return apperr.ValidationField("email", "email is required")
	}
	if !strings.Contains(req.Email, "@") {
		return apperr.ValidationField("email", "email is not valid")
	}
	if len(req.Password) < minPasswordLen {
		return apperr.ValidationField("password", "password must be at least 8 characters")
	}
	if len(req.Password) > maxPasswordLen {
		return apperr.ValidationField("password", "password is too long")
	}

	switch req.Role {
	case models.RoleStudent:
		if req.NIM == "" {
			return apperr.ValidationField("nim", "nim is required for students")
		}
	case models.RoleVendor:
		if req.CanteenName == "" {
			return apperr.ValidationField("canteen_name", "canteen_name is required for vendors")
		}
		if req.Location == "" {
			return apperr.ValidationField("location", "location is required for vendors")
		}
	default:
		return apperr.ValidationField("role", "role must be student or vendor")
	}

	return nil
}
