package checkout

import (
	"context"
	"testing"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/models"
)

func placeOrder(t *testing.T, svc *Service, option models.DeliveryOption) *models.Order {
	t.Helper()
	req := &CheckoutRequest{
		Items:          []CartLine{{MenuID: 1, Quantity: 1}},
		DeliveryOption: option,
	}
	if option == models.DeliveryDelivery {
		req.DeliveryAddress = "Dorm A, Room 12"
	}
	orders, err := svc.Checkout(context.Background(), student(7), req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return orders[0]
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name      string
		option    models.DeliveryOption
		requested string
		want      models.OrderStatus
	}{
		{"processing", models.DeliveryPickup, "processing", models.StatusProcessing},
		{"ready on pickup stays ready", models.DeliveryPickup, "ready", models.StatusReady},
		{"ready on delivery becomes on_delivery", models.DeliveryDelivery, "ready", models.StatusOnDelivery},
		{"on_delivery requested directly", models.DeliveryDelivery, "on_delivery", models.StatusOnDelivery},
		{"skip straight to completed", models.DeliveryPickup, "completed", models.StatusCompleted},
		{"cancel from pending", models.DeliveryPickup, "cancelled", models.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(menu(1, 10, "Bakso", 12000, 10, true))
			svc, events := newTestService(store)
			order := placeOrder(t, svc, tt.option)

			updated, err := svc.UpdateStatus(context.Background(), vendor(10, true), order.ID, models.OrderStatus(tt.requested))
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if updated.Status != tt.want {
				t.Errorf("status = %s, want %s", updated.Status, tt.want)
			}
			if len(events.statusChanged) != 1 {
				t.Errorf("published %d status events, want 1", len(events.statusChanged))
			}
		})
	}
}

func TestUpdateStatusRejections(t *testing.T) {
	tests := []struct {
		name       string
		caller     *principalSpec
		requested  string
		preStatus  models.OrderStatus
		wantStatus int
	}{
		{"student cannot update", &principalSpec{studentID: 7}, "processing", "", 403},
		{"unapproved vendor", &principalSpec{vendorID: 10, approved: false}, "processing", "", 403},
		{"foreign vendor", &principalSpec{vendorID: 99, approved: true}, "processing", "", 403},
		{"unknown status", &principalSpec{vendorID: 10, approved: true}, "shipped", "", 422},
		{"pending cannot be requested", &principalSpec{vendorID: 10, approved: true}, "pending", "", 422},
		{"completed is terminal", &principalSpec{vendorID: 10, approved: true}, "processing", models.StatusCompleted, 422},
		{"cancelled is terminal", &principalSpec{vendorID: 10, approved: true}, "ready", models.StatusCancelled, 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(menu(1, 10, "Bakso", 12000, 10, true))
			svc, events := newTestService(store)
			order := placeOrder(t, svc, models.DeliveryPickup)
			if tt.preStatus != "" {
				store.orders[order.ID].Status = tt.preStatus
			}
			events.statusChanged = nil

			_, err := svc.UpdateStatus(context.Background(), tt.caller.principal(), order.ID, models.OrderStatus(tt.requested))
			if err == nil {
				t.Fatal("expected error")
			}
			e := apperr.From(err)
			if e == nil {
				t.Fatalf("error is not classified: %v", err)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("status code = %d, want %d (%v)", e.Status, tt.wantStatus, err)
			}

			// Stored status must be untouched by a rejected update.
			stored := store.orders[order.ID].Status
			wantStored := order.Status
			if tt.preStatus != "" {
				wantStored = tt.preStatus
			}
			if stored != wantStored {
				t.Errorf("stored status = %s, want %s", stored, wantStored)
			}
			if len(events.statusChanged) != 0 {
				t.Errorf("published %d status events after rejection, want 0", len(events.statusChanged))
			}
		})
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	store := newFakeStore(menu(1, 10, "Bakso", 12000, 10, true))
	svc, _ := newTestService(store)

	_, err := svc.UpdateStatus(context.Background(), vendor(10, true), 404404, models.StatusProcessing)
	if err == nil {
		t.Fatal("expected error")
	}
	if e := apperr.From(err); e == nil || e.Kind != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not_found", err)
	}
}

// principalSpec keeps the rejection table compact.
type principalSpec struct {
	studentID int64
	vendorID  int64
	approved  bool
}

func (p *principalSpec) principal() *auth.Principal {
	if p.studentID != 0 {
		return student(p.studentID)
	}
	return vendor(p.vendorID, p.approved)
}
