package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusOnDelivery OrderStatus = "on_delivery"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions may leave this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DeliveryOption is how the buyer receives the order.
type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryDelivery DeliveryOption = "delivery"
)

// Valid reports whether the delivery option is one of the known options.
func (d DeliveryOption) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

// Order is one vendor's portion of a checkout. TotalPrice is the sum of
// its lines at creation time and never changes afterwards.
type Order struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	StudentID        int64           `json:"student_id"`
	VendorID         int64           `json:"vendor_id"`
	TotalPrice       float64         `json:"total_price"`
	Status           OrderStatus     `json:"status"`
	DeliveryOption   DeliveryOption  `json:"delivery_option"`
	DeliveryAddress  string          `json:"delivery_address,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	EstimatedReadyAt time.Time       `json:"estimated_ready_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Lines            []OrderLine     `json:"lines"`
	Vendor           *VendorSummary  `json:"vendor,omitempty"`
	Student          *StudentSummary `json:"student,omitempty"`
}

// OrderLine is one item within an order. UnitPrice and MenuName are
// snapshotted at order time so the line stays stable if the menu item is
// later repriced, renamed or deleted.
type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	MenuID    *int64  `json:"menu_id,omitempty"`
	MenuName  string  `json:"menu_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
