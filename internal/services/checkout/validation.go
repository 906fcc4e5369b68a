package checkout

import (
	"fmt"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

const (
	maxCartLines  = 50
	maxQuantity   = 100
	maxNotesLen   = 1000
	maxAddressLen = 500
)

// CheckoutRequest is the body of POST /orders: the buyer's whole cart in
// one submission. The cart lives client-side; nothing is stored between
// submissions.
type CheckoutRequest struct {
	Items           []CartLine            `json:"items"`
	DeliveryOption  models.DeliveryOption `json:"delivery_option"`
	DeliveryAddress string                `json:"delivery_address"`
	Notes           string                `json:"notes"`
}

// CartLine is one (menu item, quantity) pair in the cart.
type CartLine struct {
	MenuID   int64 `json:"menu_id"`
	Quantity int   `json:"quantity"`
}

// StatusUpdateRequest is the body of PUT /orders/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

func validateCheckoutRequest(req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return apperr.ValidationField("items", "cart must contain at least one item")
	}
	if len(req.Items) > maxCartLines {
		return apperr.ValidationField("items", fmt.Sprintf("cart cannot contain more than %d lines", maxCartLines))
	}

	for i, line := range req.Items {
		if line.MenuID <= 0 {
			return apperr.ValidationField(fmt.Sprintf("items[%d].menu_id", i), "menu_id is required")
		}
		if line.Quantity < 1 {
			return apperr.ValidationField(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}
		if line.Quantity > maxQuantity {
			return apperr.ValidationField(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("quantity must not exceed %d", maxQuantity))
		}
	}

	if !req.DeliveryOption.Valid() {
		return apperr.ValidationField("delivery_option", "delivery_option must be pickup or delivery")
	}
	if req.DeliveryOption == models.DeliveryDelivery && req.DeliveryAddress == "" {
		return apperr.ValidationField("delivery_address", "delivery address is required for delivery orders")
	}
	if len(req.DeliveryAddress) > maxAddressLen {
		return apperr.ValidationField("delivery_address", fmt.Sprintf("delivery address must not exceed %d characters", maxAddressLen))
	}
	if len(req.Notes) > maxNotesLen {
		return apperr.ValidationField("notes", fmt.Sprintf("notes must not exceed %d characters", maxNotesLen))
	}

	return nil
}
