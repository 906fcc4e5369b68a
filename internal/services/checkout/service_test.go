package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// fakeStore is an in-memory Store for the orchestration tests.
type fakeStore struct {
	menus      map[int64]models.Menu
	orders     map[int64]*models.Order
	nextID     int64
	nextSeq    int64
	failCreate error
}

func newFakeStore(menus ...models.Menu) *fakeStore {
	s := &fakeStore{
		menus:  make(map[int64]models.Menu),
		orders: make(map[int64]*models.Order),
	}
	for _, m := range menus {
		s.menus[m.ID] = m
	}
	return s
}

func (s *fakeStore) MenusByIDs(_ context.Context, ids []int64) (map[int64]models.Menu, error) {
	out := make(map[int64]models.Menu)
	for _, id := range ids {
		if m, ok := s.menus[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (s *fakeStore) CreateOrders(_ context.Context, orders []*models.Order) error {
	if s.failCreate != nil {
		// Atomicity: nothing is persisted when any part fails.
		return s.failCreate
	}
	now := time.Now().UTC()
	for _, o := range orders {
		s.nextID++
		s.nextSeq++
		o.ID = s.nextID
		o.OrderNumber = fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), s.nextSeq)
		o.CreatedAt = now
		o.UpdatedAt = now
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
		}
		stored := *o
		s.orders[o.ID] = &stored
	}
	return nil
}

func (s *fakeStore) OrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) OrdersByStudent(_ context.Context, studentID int64, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.StudentID == studentID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) OrdersByVendor(_ context.Context, vendorID int64, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.VendorID == vendorID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateOrderStatus(_ context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

// fakeEvents records published events.
type fakeEvents struct {
	created       []int64
	statusChanged []int64
}

func (e *fakeEvents) OrderCreated(_ context.Context, o *models.Order) {
	e.created = append(e.created, o.ID)
}

func (e *fakeEvents) OrderStatusChanged(_ context.Context, o *models.Order, _ models.OrderStatus) {
	e.statusChanged = append(e.statusChanged, o.ID)
}

func menu(id, vendorID int64, name string, price float64, prepTime int, available bool) models.Menu {
	return models.Menu{
		ID:          id,
		VendorID:    vendorID,
		Name:        name,
		Price:       price,
		PrepTime:    prepTime,
		IsAvailable: available,
	}
}

func newTestService(store *fakeStore) (*Service, *fakeEvents) {
	events := &fakeEvents{}
	svc := NewService(store, events, logger.New("checkout-test"))
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)
	}
	return svc, events
}

func student(id int64) *auth.Principal {
	return &auth.Principal{UserID: id, Role: models.RoleStudent}
}

func vendor(id int64, approved bool) *auth.Principal {
	return &auth.Principal{UserID: id, Role: models.RoleVendor, Approved: approved}
}

func TestCheckoutSplitsCartByVendor(t *testing.T) {
	store := newFakeStore(
		menu(1, 10, "Nasi Goreng", 10000, 15, true),
		menu(2, 20, "Es Teh", 5000, 5, true),
		menu(3, 10, "Ayam Bakar", 18000, 25, true),
	)
	svc, events := newTestService(store)

	orders, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
		Items: []CartLine{
			{MenuID: 1, Quantity: 2},
			{MenuID: 2, Quantity: 1},
			{MenuID: 3, Quantity: 1},
		},
		DeliveryOption: models.DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("created %d orders, want 2 (one per vendor)", len(orders))
	}

	// Partition order follows first appearance of each vendor in the cart.
	if orders[0].VendorID != 10 || orders[1].VendorID != 20 {
		t.Errorf("vendor order = [%d, %d], want [10, 20]", orders[0].VendorID, orders[1].VendorID)
	}

	if orders[0].TotalPrice != 2*10000+18000 {
		t.Errorf("vendor 10 total = %v, want 38000", orders[0].TotalPrice)
	}
	if orders[1].TotalPrice != 5000 {
		t.Errorf("vendor 20 total = %v, want 5000", orders[1].TotalPrice)
	}

	if len(orders[0].Lines) != 2 || len(orders[1].Lines) != 1 {
		t.Fatalf("line counts = %d/%d, want 2/1", len(orders[0].Lines), len(orders[1].Lines))
	}

	// Lines keep submission order and belong to the owning vendor's order.
	if orders[0].Lines[0].MenuName != "Nasi Goreng" || orders[0].Lines[1].MenuName != "Ayam Bakar" {
		t.Errorf("vendor 10 line order = [%s, %s]", orders[0].Lines[0].MenuName, orders[0].Lines[1].MenuName)
	}

	for _, o := range orders {
		if o.Status != models.StatusPending {
			t.Errorf("order %d status = %s, want pending", o.ID, o.Status)
		}
		if o.OrderNumber == "" {
			t.Errorf("order %d has no order number", o.ID)
		}
	}

	if len(events.created) != 2 {
		t.Errorf("published %d created events, want 2", len(events.created))
	}
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	store := newFakeStore(menu(1, 10, "Bakso", 12000, 10, true))
	svc, _ := newTestService(store)

	orders, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
		Items:          []CartLine{{MenuID: 1, Quantity: 3}},
		DeliveryOption: models.DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Vendor raises the price after the order exists.
	m := store.menus[1]
	m.Price = 99000
	store.menus[1] = m

	stored, err := store.OrderByID(context.Background(), orders[0].ID)
	if err != nil {
		t.Fatalf("OrderByID: %v", err)
	}
	if stored.TotalPrice != 36000 {
		t.Errorf("total after reprice = %v, want 36000", stored.TotalPrice)
	}
	if stored.Lines[0].UnitPrice != 12000 {
		t.Errorf("unit price after reprice = %v, want 12000", stored.Lines[0].UnitPrice)
	}
}

func TestCheckoutEstimatedReady(t *testing.T) {
	store := newFakeStore(
		menu(1, 10, "Soto", 15000, 20, true),
		menu(2, 10, "Teh Manis", 4000, 5, true),
	)
	svc, _ := newTestService(store)
	submitted := svc.now()

	tests := []struct {
		name    string
		option  models.DeliveryOption
		address string
		want    time.Time
	}{
		{
			name:   "pickup uses max prep time",
			option: models.DeliveryPickup,
			want:   submitted.Add(20 * time.Minute),
		},
		{
			name:    "delivery adds ten minutes padding",
			option:  models.DeliveryDelivery,
			address: "Block C",
			want:    submitted.Add(30 * time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
				Items:           []CartLine{{MenuID: 1, Quantity: 1}, {MenuID: 2, Quantity: 2}},
				DeliveryOption:  tt.option,
				DeliveryAddress: tt.address,
			})
			if err != nil {
				t.Fatalf("Checkout: %v", err)
			}
			if !orders[0].EstimatedReadyAt.Equal(tt.want) {
				t.Errorf("estimated ready = %v, want %v", orders[0].EstimatedReadyAt, tt.want)
			}
			if tt.option == models.DeliveryDelivery && orders[0].DeliveryAddress != tt.address {
				t.Errorf("delivery address = %q, want %q", orders[0].DeliveryAddress, tt.address)
			}
		})
	}
}

func TestCheckoutRejections(t *testing.T) {
	store := newFakeStore(
		menu(1, 10, "Mie Ayam", 13000, 10, true),
		menu(2, 20, "Gado-Gado", 11000, 10, false),
	)
	svc, _ := newTestService(store)

	tests := []struct {
		name       string
		caller     *auth.Principal
		req        *CheckoutRequest
		wantStatus int
	}{
		{
			name:       "empty cart",
			caller:     student(7),
			req:        &CheckoutRequest{DeliveryOption: models.DeliveryPickup},
			wantStatus: 400,
		},
		{
			name:   "unknown item",
			caller: student(7),
			req: &CheckoutRequest{
				Items:          []CartLine{{MenuID: 999, Quantity: 1}},
				DeliveryOption: models.DeliveryPickup,
			},
			wantStatus: 400,
		},
		{
			name:   "unavailable item rejects whole cart",
			caller: student(7),
			req: &CheckoutRequest{
				Items:          []CartLine{{MenuID: 1, Quantity: 1}, {MenuID: 2, Quantity: 1}},
				DeliveryOption: models.DeliveryPickup,
			},
			wantStatus: 400,
		},
		{
			name:   "delivery without address",
			caller: student(7),
			req: &CheckoutRequest{
				Items:          []CartLine{{MenuID: 1, Quantity: 1}},
				DeliveryOption: models.DeliveryDelivery,
			},
			wantStatus: 400,
		},
		{
			name:   "zero quantity",
			caller: student(7),
			req: &CheckoutRequest{
				Items:          []CartLine{{MenuID: 1, Quantity: 0}},
				DeliveryOption: models.DeliveryPickup,
			},
			wantStatus: 400,
		},
		{
			name:   "vendor cannot place orders",
			caller: vendor(10, true),
			req: &CheckoutRequest{
				Items:          []CartLine{{MenuID: 1, Quantity: 1}},
				DeliveryOption: models.DeliveryPickup,
			},
			wantStatus: 403,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), tt.caller, tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			e := apperr.From(err)
			if e == nil {
				t.Fatalf("error is not classified: %v", err)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", e.Status, tt.wantStatus, err)
			}
			if len(store.orders) != 0 {
				t.Errorf("%d orders persisted after rejected checkout, want 0", len(store.orders))
			}
		})
	}
}

func TestCheckoutNamesUnavailableItem(t *testing.T) {
	store := newFakeStore(menu(2, 20, "Gado-Gado", 11000, 10, false))
	svc, _ := newTestService(store)

	_, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
		Items:          []CartLine{{MenuID: 2, Quantity: 1}},
		DeliveryOption: models.DeliveryPickup,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	e := apperr.From(err)
	if e == nil || e.Message == "" {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Gado-Gado"; !strings.Contains(e.Message, want) {
		t.Errorf("message %q does not name the unavailable item %q", e.Message, want)
	}
}

func TestCheckoutPersistenceFailureIsAtomicAndOpaque(t *testing.T) {
	store := newFakeStore(
		menu(1, 10, "Mie Ayam", 13000, 10, true),
		menu(2, 20, "Sate", 20000, 15, true),
	)
	store.failCreate = errors.New("connection reset")
	svc, events := newTestService(store)

	_, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
		Items:          []CartLine{{MenuID: 1, Quantity: 1}, {MenuID: 2, Quantity: 1}},
		DeliveryOption: models.DeliveryPickup,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	e := apperr.From(err)
	if e == nil || e.Kind != apperr.KindPersistence {
		t.Fatalf("error kind = %v, want persistence", err)
	}
	if strings.Contains(e.Message, "connection reset") {
		t.Errorf("client-facing message leaks internal detail: %q", e.Message)
	}
	if len(store.orders) != 0 {
		t.Errorf("%d orders persisted after failed checkout, want 0", len(store.orders))
	}
	if len(events.created) != 0 {
		t.Errorf("%d created events after failed checkout, want 0", len(events.created))
	}
}

func TestOrderByIDAccess(t *testing.T) {
	store := newFakeStore(menu(1, 10, "Bakso", 12000, 10, true))
	svc, _ := newTestService(store)

	orders, err := svc.Checkout(context.Background(), student(7), &CheckoutRequest{
		Items:          []CartLine{{MenuID: 1, Quantity: 1}},
		DeliveryOption: models.DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	id := orders[0].ID

	if _, err := svc.OrderByID(context.Background(), student(7), id); err != nil {
		t.Errorf("owning student denied: %v", err)
	}
	if _, err := svc.OrderByID(context.Background(), vendor(10, true), id); err != nil {
		t.Errorf("owning vendor denied: %v", err)
	}
	if _, err := svc.OrderByID(context.Background(), student(8), id); err == nil {
		t.Error("foreign student was allowed to read the order")
	}
	if _, err := svc.OrderByID(context.Background(), student(7), 9999); err == nil {
		t.Error("expected not-found for unknown order")
	} else if e := apperr.From(err); e == nil || e.Kind != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not_found", err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, defaultOrderPageSize},
		{-3, defaultOrderPageSize},
		{101, defaultOrderPageSize},
		{1, 1},
		{10, 10},
		{100, 100},
	}
	for _, tt := range tests {
		if got := normalizeLimit(tt.in); got != tt.want {
			t.Errorf("normalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
