// Package catalog serves the public menu listing and the vendor-side menu
// management. Single-item reads go through a redis cache-aside layer that
// every write path invalidates.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

const (
	popularLimit = 8
	menuCacheTTL = 5 * time.Minute
)

// Filter narrows the public menu listing.
type Filter struct {
	Search   string
	Category string
	VendorID int64
	Limit    int
	Offset   int
}

// Store is the persistence surface of the catalog.
type Store interface {
	// ListMenus returns available items matching the filter, most popular
	// and best rated first, with the owning vendor attached.
	ListMenus(ctx context.Context, f Filter) ([]models.Menu, error)
	PopularMenus(ctx context.Context, limit int) ([]models.Menu, error)
	MenuByID(ctx context.Context, id int64) (*models.Menu, error)
	// MenusByVendor returns everything a vendor owns, unavailable items
	// included.
	MenusByVendor(ctx context.Context, vendorID int64) ([]models.Menu, error)
	CreateMenu(ctx context.Context, m *models.Menu) error
	UpdateMenu(ctx context.Context, m *models.Menu) error
	DeleteMenu(ctx context.Context, id int64) (bool, error)
	SetMenuAvailability(ctx context.Context, id int64, available bool) (*models.Menu, error)
}

// MenuCache is the cache-aside surface for single-menu reads.
// *cache.Cache satisfies it; a disabled cache misses on every Get.
type MenuCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// Service handles catalog reads and vendor menu management.
type Service struct {
	store  Store
	cache  MenuCache
	logger *logger.Logger
}

func NewService(store Store, c MenuCache, log *logger.Logger) *Service {
	return &Service{store: store, cache: c, logger: log}
}

// List is the public menu listing with search/category/vendor filters.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Menu, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	menus, err := s.store.ListMenus(ctx, f)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list menus: %w", err))
	}
	return menus, nil
}

// Popular returns the highest rated popular items still available.
func (s *Service) Popular(ctx context.Context) ([]models.Menu, error) {
	menus, err := s.store.PopularMenus(ctx, popularLimit)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list popular menus: %w", err))
	}
	return menus, nil
}

// Get returns one menu item, serving the cached copy when present.
func (s *Service) Get(ctx context.Context, id int64) (*models.Menu, error) {
	key := menuCacheKey(id)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var m models.Menu
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			return &m, nil
		}
		// Unparseable entry, drop it and fall through to the database.
		s.cache.Delete(ctx, key)
	}

	menu, err := s.store.MenuByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load menu: %w", err))
	}
	if menu == nil {
		return nil, apperr.NotFound("menu not found")
	}

	if raw, err := json.Marshal(menu); err == nil {
		s.cache.Set(ctx, key, string(raw), menuCacheTTL)
	}
	return menu, nil
}

// VendorMenus lists the calling vendor's own items, unavailable ones
// included.
func (s *Service) VendorMenus(ctx context.Context, caller *auth.Principal) ([]models.Menu, error) {
	if caller.Role != models.RoleVendor {
		return nil, apperr.Authorization("only vendors have a menu")
	}
	menus, err := s.store.MenusByVendor(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list vendor menus: %w", err))
	}
	return menus, nil
}

// Create adds an item to the calling vendor's menu.
func (s *Service) Create(ctx context.Context, caller *auth.Principal, req *MenuRequest) (*models.Menu, error) {
	if err := requireApprovedVendor(caller); err != nil {
		return nil, err
	}
	if err := validateMenuRequest(req); err != nil {
		return nil, err
	}

	menu := &models.Menu{
		VendorID:    caller.UserID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		PhotoPath:   req.PhotoPath,
		IsAvailable: true,
		PrepTime:    defaultPrepTime,
	}
	if req.PrepTime > 0 {
		menu.PrepTime = req.PrepTime
	}
	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	}

	if err := s.store.CreateMenu(ctx, menu); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("create menu: %w", err))
	}
	return menu, nil
}

// Update replaces the mutable fields of an item the caller owns.
func (s *Service) Update(ctx context.Context, caller *auth.Principal, id int64, req *MenuRequest) (*models.Menu, error) {
	if err := requireApprovedVendor(caller); err != nil {
		return nil, err
	}
	if err := validateMenuRequest(req); err != nil {
		return nil, err
	}

	menu, err := s.ownedMenu(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	menu.Name = req.Name
	menu.Description = req.Description
	menu.Price = req.Price
	menu.Category = req.Category
	if req.PhotoPath != "" {
		menu.PhotoPath = req.PhotoPath
	}
	if req.PrepTime > 0 {
		menu.PrepTime = req.PrepTime
	}
	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	}

	if err := s.store.UpdateMenu(ctx, menu); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("update menu: %w", err))
	}
	s.cache.Delete(ctx, menuCacheKey(id))
	return menu, nil
}

// Delete removes an item the caller owns. Past order lines keep their
// snapshotted name and price.
func (s *Service) Delete(ctx context.Context, caller *auth.Principal, id int64) error {
	if err := requireApprovedVendor(caller); err != nil {
		return err
	}
	if _, err := s.ownedMenu(ctx, caller, id); err != nil {
		return err
	}

	deleted, err := s.store.DeleteMenu(ctx, id)
	if err != nil {
		return apperr.Persistence(fmt.Errorf("delete menu: %w", err))
	}
	if !deleted {
		return apperr.NotFound("menu not found")
	}
	s.cache.Delete(ctx, menuCacheKey(id))
	return nil
}

// ToggleAvailability flips whether an item can be ordered without touching
// anything else.
func (s *Service) ToggleAvailability(ctx context.Context, caller *auth.Principal, id int64, req *AvailabilityRequest) (*models.Menu, error) {
	if err := requireApprovedVendor(caller); err != nil {
		return nil, err
	}
	if req.IsAvailable == nil {
		return nil, apperr.ValidationField("is_available", "is_available is required")
	}
	if _, err := s.ownedMenu(ctx, caller, id); err != nil {
		return nil, err
	}

	menu, err := s.store.SetMenuAvailability(ctx, id, *req.IsAvailable)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("set menu availability: %w", err))
	}
	if menu == nil {
		return nil, apperr.NotFound("menu not found")
	}
	s.cache.Delete(ctx, menuCacheKey(id))
	return menu, nil
}

// ownedMenu loads a menu and checks the caller owns it.
func (s *Service) ownedMenu(ctx context.Context, caller *auth.Principal, id int64) (*models.Menu, error) {
	menu, err := s.store.MenuByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load menu: %w", err))
	}
	if menu == nil {
		return nil, apperr.NotFound("menu not found")
	}
	if menu.VendorID != caller.UserID {
		return nil, apperr.Authorization("you do not own this menu")
	}
	return menu, nil
}

func requireApprovedVendor(caller *auth.Principal) error {
	if caller.Role != models.RoleVendor {
		return apperr.Authorization("only vendors can manage menus")
	}
	if !caller.Approved {
		return apperr.Authorization("vendor account is awaiting admin approval")
	}
	return nil
}

func menuCacheKey(id int64) string {
	return fmt.Sprintf("menu:%d", id)
}
