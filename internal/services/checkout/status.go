package checkout

import (
	"context"
	"fmt"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/models"
)

// requestableStatuses is the fixed set a vendor may ask for. `pending` is
// only ever set by checkout itself.
var requestableStatuses = map[models.OrderStatus]bool{
	models.StatusProcessing: true,
	models.StatusReady:      true,
	models.StatusOnDelivery: true,
	models.StatusCompleted:  true,
	models.StatusCancelled:  true,
}

// resolveStatus decides the stored status for a requested one. A delivery
// order never rests in bare `ready`; the machine substitutes
// `on_delivery`. Pickup orders take the request literally.
func resolveStatus(requested models.OrderStatus, option models.DeliveryOption) models.OrderStatus {
	if requested == models.StatusReady && option == models.DeliveryDelivery {
		return models.StatusOnDelivery
	}
	return requested
}

// UpdateStatus moves an order to the requested status on behalf of the
// owning vendor. Beyond ownership, the terminal-state guard and the
// ready/on_delivery substitution, transitions are deliberately
// unconstrained: vendors may skip intermediate states.
func (s *Service) UpdateStatus(ctx context.Context, caller *auth.Principal, orderID int64, requested models.OrderStatus) (*models.Order, error) {
	if caller.Role != models.RoleVendor {
		return nil, apperr.Authorization("only vendors can update order status")
	}
	if !caller.Approved {
		return nil, apperr.Authorization("vendor account is awaiting admin approval")
	}

	if !requestableStatuses[requested] {
		return nil, apperr.UnprocessableField("status",
			fmt.Sprintf("status must be one of: processing, ready, on_delivery, completed, cancelled; got %q", requested))
	}

	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	if order.VendorID != caller.UserID {
		return nil, apperr.Authorization("you do not have access to this order")
	}
	if order.Status.Terminal() {
		return nil, apperr.UnprocessableField("status",
			fmt.Sprintf("order is already %s and cannot change status", order.Status))
	}

	previous := order.Status
	actual := resolveStatus(requested, order.DeliveryOption)

	updated, err := s.store.UpdateOrderStatus(ctx, orderID, actual)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("update order status: %w", err))
	}

	s.events.OrderStatusChanged(ctx, updated, previous)

	return updated, nil
}
