// Package account covers registration, login and the authenticated
// user's own profile.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// ErrEmailTaken is returned by Store.CreateUser when the email already
// has an account.
var ErrEmailTaken = errors.New("email already registered")

// Store is the persistence surface of the account service. It doubles as
// the auth middleware's user loader.
type Store interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id int64, name, phone string) (*models.User, error)
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Service handles registration, login and profile reads/updates.
type Service struct {
	store    Store
	secret   string
	tokenTTL time.Duration
	logger   *logger.Logger
}

func NewService(store Store, secret string, tokenTTL time.Duration, log *logger.Logger) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, logger: log}
}

// Register creates a student or vendor account. Vendors start unapproved
// and must wait for an admin before selling.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: hash,
	}
	switch req.Role {
	case models.RoleStudent:
		user.Student = &models.StudentProfile{NIM: req.NIM}
	case models.RoleVendor:
		user.Vendor = &models.VendorProfile{
			CanteenName: req.CanteenName,
			Location:    req.Location,
		}
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("email is already registered")
		}
		return nil, apperr.Persistence(fmt.Errorf("create user: %w", err))
	}

	token, err := auth.IssueToken(s.secret, user, s.tokenTTL)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("issue token: %w", err))
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Authorization("account is deactivated")
	}
	if user.Role == models.RoleVendor && !user.IsApprovedVendor() {
		return nil, apperr.Authorization("vendor account is awaiting admin approval")
	}

	token, err := auth.IssueToken(s.secret, user, s.tokenTTL)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("issue token: %w", err))
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the caller's own record.
func (s *Service) Me(ctx context.Context, caller *auth.Principal) (*models.User, error) {
	user, err := s.store.UserByID(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// UpdateProfile changes the caller's name and phone.
func (s *Service) UpdateProfile(ctx context.Context, caller *auth.Principal, req *ProfileUpdateRequest) (*models.User, error) {
	if req.Name == "" {
		return nil, apperr.ValidationField("name", "name is required")
	}

	user, err := s.store.UpdateProfile(ctx, caller.UserID, req.Name, req.Phone)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("update profile: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
