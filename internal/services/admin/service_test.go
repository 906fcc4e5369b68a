package admin

import (
	"context"
	"testing"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

type fakeStore struct {
	users map[int64]*models.User
}

func newFakeStore(users ...*models.User) *fakeStore {
	s := &fakeStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) Users(_ context.Context, f UserFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeStore) UserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) SetUserActive(_ context.Context, id int64, active bool) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.IsActive = active
	cp := *u
	return &cp, nil
}

func (s *fakeStore) PendingVendors(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.Role == models.RoleVendor && !u.IsApprovedVendor() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeStore) ApproveVendor(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok || u.Role != models.RoleVendor {
		return nil, nil
	}
	u.Vendor.Approved = true
	cp := *u
	return &cp, nil
}

func (s *fakeStore) DeleteUser(_ context.Context, id int64) (bool, error) {
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *fakeStore) PlatformStats(_ context.Context) (*PlatformStats, error) {
	return &PlatformStats{}, nil
}

func adminCaller() *auth.Principal {
	return &auth.Principal{UserID: 1, Role: models.RoleAdmin}
}

func pendingVendor(id int64) *models.User {
	return &models.User{
		ID:       id,
		Name:     "Applicant",
		Role:     models.RoleVendor,
		IsActive: true,
		Vendor:   &models.VendorProfile{CanteenName: "Kantin", Location: "A"},
	}
}

func activeStudent(id int64) *models.User {
	return &models.User{
		ID:       id,
		Name:     "Student",
		Role:     models.RoleStudent,
		IsActive: true,
		Student:  &models.StudentProfile{NIM: "220001"},
	}
}

func TestApproveVendor(t *testing.T) {
	store := newFakeStore(pendingVendor(10))
	svc := NewService(store, logger.New("admin-test"))

	approved, err := svc.ApproveVendor(context.Background(), adminCaller(), 10)
	if err != nil {
		t.Fatalf("ApproveVendor: %v", err)
	}
	if !approved.IsApprovedVendor() {
		t.Error("vendor not approved after ApproveVendor")
	}

	// Second approval is a client error.
	_, err = svc.ApproveVendor(context.Background(), adminCaller(), 10)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindValidation {
		t.Errorf("double approve = %v, want validation error", err)
	}

	// Students cannot be approved.
	store.users[7] = activeStudent(7)
	_, err = svc.ApproveVendor(context.Background(), adminCaller(), 7)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindNotFound {
		t.Errorf("approve student = %v, want not_found", err)
	}
}

func TestRejectVendor(t *testing.T) {
	store := newFakeStore(pendingVendor(10))
	svc := NewService(store, logger.New("admin-test"))

	if err := svc.RejectVendor(context.Background(), adminCaller(), 10); err != nil {
		t.Fatalf("RejectVendor: %v", err)
	}
	if _, ok := store.users[10]; ok {
		t.Error("vendor still present after rejection")
	}

	// Rejecting an approved vendor is refused.
	v := pendingVendor(11)
	v.Vendor.Approved = true
	store.users[11] = v
	err := svc.RejectVendor(context.Background(), adminCaller(), 11)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindValidation {
		t.Errorf("reject approved vendor = %v, want validation error", err)
	}
}

func TestToggleActive(t *testing.T) {
	store := newFakeStore(activeStudent(7))
	svc := NewService(store, logger.New("admin-test"))

	toggled, err := svc.ToggleActive(context.Background(), adminCaller(), 7)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if toggled.IsActive {
		t.Error("user still active after toggle")
	}

	toggled, err = svc.ToggleActive(context.Background(), adminCaller(), 7)
	if err != nil {
		t.Fatalf("second ToggleActive: %v", err)
	}
	if !toggled.IsActive {
		t.Error("user still inactive after second toggle")
	}

	// Admins cannot deactivate themselves.
	_, err = svc.ToggleActive(context.Background(), adminCaller(), 1)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindValidation {
		t.Errorf("self toggle = %v, want validation error", err)
	}
}

func TestAdminGate(t *testing.T) {
	svc := NewService(newFakeStore(), logger.New("admin-test"))
	student := &auth.Principal{UserID: 7, Role: models.RoleStudent}

	_, err := svc.Users(context.Background(), student, UserFilter{})
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindAuthorization {
		t.Errorf("student listing users = %v, want authorization", err)
	}
	_, err = svc.Stats(context.Background(), student)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindAuthorization {
		t.Errorf("student reading stats = %v, want authorization", err)
	}
}

func TestUsersFilterValidation(t *testing.T) {
	svc := NewService(newFakeStore(activeStudent(7)), logger.New("admin-test"))

	_, err := svc.Users(context.Background(), adminCaller(), UserFilter{Role: "superuser"})
	if e := apperr.From(err); e == nil || e.Field != "role" {
		t.Errorf("bad role filter = %v, want role validation", err)
	}

	users, err := svc.Users(context.Background(), adminCaller(), UserFilter{Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("listed %d users, want 1", len(users))
	}
}
