// Package admin covers user management, vendor approval and the platform
// stats dashboard.
package admin

import (
	"context"
	"fmt"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   models.Role
	Search string
	Limit  int
	Offset int
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalStudents   int     `json:"total_students"`
	TotalVendors    int     `json:"total_vendors"`
	PendingVendors  int     `json:"pending_vendors"`
	TotalMenus      int     `json:"total_menus"`
	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	Revenue         float64 `json:"revenue"`
}

// Store is the persistence surface of the admin service.
type Store interface {
	Users(ctx context.Context, f UserFilter) ([]models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (*models.User, error)
	PendingVendors(ctx context.Context) ([]models.User, error)
	ApproveVendor(ctx context.Context, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	PlatformStats(ctx context.Context) (*PlatformStats, error)
}

// Service handles the admin endpoints. Every method requires the admin
// role; the router enforces it too, but the check here keeps the service
// safe to call from anywhere.
type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

func requireAdmin(caller *auth.Principal) error {
	if caller.Role != models.RoleAdmin {
		return apperr.Authorization("admin access required")
	}
	return nil
}

// Users lists accounts with optional role and name/email search filters.
func (s *Service) Users(ctx context.Context, caller *auth.Principal, f UserFilter) ([]models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, apperr.ValidationField("role", "role must be student, vendor or admin")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	users, err := s.store.Users(ctx, f)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// User returns one account.
func (s *Service) User(ctx context.Context, caller *auth.Principal, id int64) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// ToggleActive flips an account's kill-switch. Admins cannot lock
// themselves out.
func (s *Service) ToggleActive(ctx context.Context, caller *auth.Principal, id int64) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if id == caller.UserID {
		return nil, apperr.Validation("you cannot deactivate your own account")
	}

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	updated, err := s.store.SetUserActive(ctx, id, !user.IsActive)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("toggle user: %w", err))
	}
	if updated == nil {
		return nil, apperr.NotFound("user not found")
	}
	return updated, nil
}

// PendingVendors lists vendors awaiting approval, oldest first.
func (s *Service) PendingVendors(ctx context.Context, caller *auth.Principal) ([]models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	vendors, err := s.store.PendingVendors(ctx)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list pending vendors: %w", err))
	}
	return vendors, nil
}

// ApproveVendor lets a vendor start selling.
func (s *Service) ApproveVendor(ctx context.Context, caller *auth.Principal, id int64) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil || user.Role != models.RoleVendor {
		return nil, apperr.NotFound("vendor not found")
	}
	if user.IsApprovedVendor() {
		return nil, apperr.Validation("vendor is already approved")
	}

	approved, err := s.store.ApproveVendor(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("approve vendor: %w", err))
	}
	if approved == nil {
		return nil, apperr.NotFound("vendor not found")
	}

	s.logger.Info("vendor_approved", "", "Vendor approved", map[string]any{
		"vendor_id": id,
		"admin_id":  caller.UserID,
	})
	return approved, nil
}

// RejectVendor removes a vendor application. Approved vendors cannot be
// rejected; deactivate them instead.
func (s *Service) RejectVendor(ctx context.Context, caller *auth.Principal, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return apperr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil || user.Role != models.RoleVendor {
		return apperr.NotFound("vendor not found")
	}
	if user.IsApprovedVendor() {
		return apperr.Validation("vendor is already approved; deactivate the account instead")
	}

	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return apperr.Persistence(fmt.Errorf("delete user: %w", err))
	}
	if !deleted {
		return apperr.NotFound("vendor not found")
	}

	s.logger.Info("vendor_rejected", "", "Vendor application rejected", map[string]any{
		"vendor_id": id,
		"admin_id":  caller.UserID,
	})
	return nil
}

// Stats returns the platform dashboard numbers.
func (s *Service) Stats(ctx context.Context, caller *auth.Principal) (*PlatformStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	stats, err := s.store.PlatformStats(ctx)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load platform stats: %w", err))
	}
	return stats, nil
}
