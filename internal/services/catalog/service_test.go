package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

type fakeStore struct {
	menus  map[int64]*models.Menu
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{menus: make(map[int64]*models.Menu)}
}

func (s *fakeStore) ListMenus(_ context.Context, f Filter) ([]models.Menu, error) {
	var out []models.Menu
	for _, m := range s.menus {
		if !m.IsAvailable {
			continue
		}
		if f.VendorID > 0 && m.VendorID != f.VendorID {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *fakeStore) PopularMenus(_ context.Context, limit int) ([]models.Menu, error) {
	var out []models.Menu
	for _, m := range s.menus {
		if m.IsAvailable && m.IsPopular && len(out) < limit {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeStore) MenuByID(_ context.Context, id int64) (*models.Menu, error) {
	m, ok := s.menus[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) MenusByVendor(_ context.Context, vendorID int64) ([]models.Menu, error) {
	var out []models.Menu
	for _, m := range s.menus {
		if m.VendorID == vendorID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateMenu(_ context.Context, m *models.Menu) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.menus[m.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateMenu(_ context.Context, m *models.Menu) error {
	cp := *m
	s.menus[m.ID] = &cp
	return nil
}

func (s *fakeStore) DeleteMenu(_ context.Context, id int64) (bool, error) {
	if _, ok := s.menus[id]; !ok {
		return false, nil
	}
	delete(s.menus, id)
	return true, nil
}

func (s *fakeStore) SetMenuAvailability(_ context.Context, id int64, available bool) (*models.Menu, error) {
	m, ok := s.menus[id]
	if !ok {
		return nil, nil
	}
	m.IsAvailable = available
	cp := *m
	return &cp, nil
}

// fakeCache is an in-memory MenuCache that counts sets and deletes.
type fakeCache struct {
	entries map[string]string
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.entries[key] = value
	c.sets++
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, newFakeCache(), logger.New("catalog-test"))
}

func approvedVendor(id int64) *auth.Principal {
	return &auth.Principal{UserID: id, Role: models.RoleVendor, Approved: true}
}

func TestCreateMenuDefaults(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	menu, err := svc.Create(context.Background(), approvedVendor(10), &MenuRequest{
		Name:  "Nasi Uduk",
		Price: 12000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !menu.IsAvailable {
		t.Error("new menu should default to available")
	}
	if menu.PrepTime != defaultPrepTime {
		t.Errorf("prep time = %d, want %d", menu.PrepTime, defaultPrepTime)
	}
	if menu.VendorID != 10 {
		t.Errorf("vendor id = %d, want caller's id", menu.VendorID)
	}
}

func TestCreateMenuGates(t *testing.T) {
	tests := []struct {
		name   string
		caller *auth.Principal
	}{
		{"student", &auth.Principal{UserID: 7, Role: models.RoleStudent}},
		{"unapproved vendor", &auth.Principal{UserID: 10, Role: models.RoleVendor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			_, err := svc.Create(context.Background(), tt.caller, &MenuRequest{Name: "X", Price: 1})
			if err == nil {
				t.Fatal("expected error")
			}
			if e := apperr.From(err); e == nil || e.Kind != apperr.KindAuthorization {
				t.Errorf("error kind = %v, want authorization", err)
			}
		})
	}
}

func TestUpdateMenuOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	menu, err := svc.Create(context.Background(), approvedVendor(10), &MenuRequest{Name: "Soto", Price: 15000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), approvedVendor(99), menu.ID, &MenuRequest{Name: "Hijacked", Price: 1})
	if err == nil {
		t.Fatal("foreign vendor was allowed to update the menu")
	}
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindAuthorization {
		t.Errorf("error kind = %v, want authorization", err)
	}
	if store.menus[menu.ID].Name != "Soto" {
		t.Errorf("menu mutated by rejected update: %q", store.menus[menu.ID].Name)
	}

	updated, err := svc.Update(context.Background(), approvedVendor(10), menu.ID, &MenuRequest{Name: "Soto Ayam", Price: 16000})
	if err != nil {
		t.Fatalf("Update by owner: %v", err)
	}
	if updated.Name != "Soto Ayam" || updated.Price != 16000 {
		t.Errorf("updated = %q/%v, want Soto Ayam/16000", updated.Name, updated.Price)
	}
}

func TestDeleteMenu(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	menu, err := svc.Create(context.Background(), approvedVendor(10), &MenuRequest{Name: "Sate", Price: 20000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), approvedVendor(10), menu.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.menus[menu.ID]; ok {
		t.Error("menu still present after delete")
	}

	err = svc.Delete(context.Background(), approvedVendor(10), menu.ID)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindNotFound {
		t.Errorf("second delete = %v, want not_found", err)
	}
}

func TestToggleAvailability(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	menu, err := svc.Create(context.Background(), approvedVendor(10), &MenuRequest{Name: "Es Teh", Price: 5000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	off := false
	toggled, err := svc.ToggleAvailability(context.Background(), approvedVendor(10), menu.ID, &AvailabilityRequest{IsAvailable: &off})
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if toggled.IsAvailable {
		t.Error("menu still available after toggle off")
	}

	_, err = svc.ToggleAvailability(context.Background(), approvedVendor(10), menu.ID, &AvailabilityRequest{})
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindValidation {
		t.Errorf("missing is_available = %v, want validation error", err)
	}
}

func TestGetMenu(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	menu, err := svc.Create(context.Background(), approvedVendor(10), &MenuRequest{Name: "Bakso", Price: 12000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), menu.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Bakso" {
		t.Errorf("name = %q, want Bakso", got.Name)
	}

	_, err = svc.Get(context.Background(), 9999)
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindNotFound {
		t.Errorf("unknown id = %v, want not_found", err)
	}
}

func TestValidateMenuRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       MenuRequest
		wantField string
	}{
		{name: "valid", req: MenuRequest{Name: "Nasi Goreng", Price: 10000, PrepTime: 20}},
		{name: "missing name", req: MenuRequest{Price: 10000}, wantField: "name"},
		{name: "name too long", req: MenuRequest{Name: strings.Repeat("a", maxNameLen+1), Price: 1}, wantField: "name"},
		{name: "negative price", req: MenuRequest{Name: "X", Price: -1}, wantField: "price"},
		{name: "prep time out of range", req: MenuRequest{Name: "X", Price: 1, PrepTime: maxPrepTime + 1}, wantField: "prep_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMenuRequest(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e := apperr.From(err)
			if e == nil {
				t.Fatalf("expected validation error, got %v", err)
			}
			if e.Field != tt.wantField {
				t.Errorf("field = %q, want %q", e.Field, tt.wantField)
			}
		})
	}
}
