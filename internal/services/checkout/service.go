// Package checkout implements the order-splitting checkout transaction
// and the order status machine. A submitted cart is partitioned by the
// vendor owning each item and persisted as one order per vendor inside a
// single transaction; either every vendor's order commits or none do.
package checkout

import (
	"context"
	"fmt"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/auth"
	"kantin/internal/logger"
	"kantin/internal/models"
)

// deliveryPadding is added to the prep-time estimate for delivery orders.
const deliveryPadding = 10 * time.Minute

// Order history pages are smaller than catalog pages: each row carries
// its lines, so 10 keeps the payload manageable.
const (
	defaultOrderPageSize = 10
	maxOrderPageSize     = 100
)

// Store is the persistence surface the service needs. CreateOrders must
// be atomic across all passed orders.
type Store interface {
	// MenusByIDs resolves menu items in one batch; missing ids are simply
	// absent from the returned map.
	MenusByIDs(ctx context.Context, ids []int64) (map[int64]models.Menu, error)
	// CreateOrders persists all orders and their lines in one
	// transaction, assigning IDs, order numbers and timestamps.
	CreateOrders(ctx context.Context, orders []*models.Order) error
	OrderByID(ctx context.Context, id int64) (*models.Order, error)
	OrdersByStudent(ctx context.Context, studentID int64, limit, offset int) ([]models.Order, error)
	OrdersByVendor(ctx context.Context, vendorID int64, limit, offset int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error)
}

// EventSink receives lifecycle events after a successful commit.
type EventSink interface {
	OrderCreated(ctx context.Context, o *models.Order)
	OrderStatusChanged(ctx context.Context, o *models.Order, previous models.OrderStatus)
}

// Service is the checkout orchestrator and status machine.
type Service struct {
	store  Store
	events EventSink
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store Store, events EventSink, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// vendorPartition is the subset of the cart owned by one vendor, in the
// order the lines were submitted.
type vendorPartition struct {
	vendorID int64
	lines    []resolvedLine
}

type resolvedLine struct {
	menu     models.Menu
	quantity int
}

// Checkout validates the cart, partitions it by vendor and atomically
// creates one pending order per vendor. It either returns every created
// order, in the order vendors first appear in the cart, or nothing.
func (s *Service) Checkout(ctx context.Context, buyer *auth.Principal, req *CheckoutRequest) ([]*models.Order, error) {
	if buyer.Role != models.RoleStudent {
		return nil, apperr.Authorization("only students can place orders")
	}

	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	menus, err := s.store.MenusByIDs(ctx, menuIDs(req.Items))
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("resolve cart items: %w", err))
	}

	partitions, err := partitionByVendor(req.Items, menus)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now().UTC()
	orders := make([]*models.Order, 0, len(partitions))
	for _, part := range partitions {
		orders = append(orders, buildOrder(buyer.UserID, part, req, submittedAt))
	}

	if err := s.store.CreateOrders(ctx, orders); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("create orders: %w", err))
	}

	for _, o := range orders {
		s.events.OrderCreated(ctx, o)
	}

	return orders, nil
}

// menuIDs collects the distinct menu ids of the cart for the batch lookup.
func menuIDs(lines []CartLine) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.MenuID] {
			seen[line.MenuID] = true
			ids = append(ids, line.MenuID)
		}
	}
	return ids
}

// partitionByVendor groups cart lines by the vendor owning each resolved
// item. Partition order follows the first appearance of each vendor in
// the cart; line order within a partition follows the cart. Unknown or
// unavailable items reject the whole cart.
func partitionByVendor(lines []CartLine, menus map[int64]models.Menu) ([]vendorPartition, error) {
	byVendor := make(map[int64]int)
	var partitions []vendorPartition

	for _, line := range lines {
		menu, ok := menus[line.MenuID]
		if !ok {
			return nil, apperr.ValidationField("items",
				fmt.Sprintf("menu item %d does not exist", line.MenuID))
		}
		if !menu.IsAvailable {
			return nil, apperr.ValidationField("items",
				fmt.Sprintf("menu '%s' is currently unavailable", menu.Name))
		}

		idx, ok := byVendor[menu.VendorID]
		if !ok {
			idx = len(partitions)
			byVendor[menu.VendorID] = idx
			partitions = append(partitions, vendorPartition{vendorID: menu.VendorID})
		}
		partitions[idx].lines = append(partitions[idx].lines, resolvedLine{
			menu:     menu,
			quantity: line.Quantity,
		})
	}

	return partitions, nil
}

// buildOrder materializes one vendor partition as an order with snapshot
// prices. The ready estimate is the slowest item's prep time, padded for
// delivery.
func buildOrder(studentID int64, part vendorPartition, req *CheckoutRequest, submittedAt time.Time) *models.Order {
	var total float64
	var maxPrep int
	orderLines := make([]models.OrderLine, 0, len(part.lines))

	for _, line := range part.lines {
		menuID := line.menu.ID
		total += line.menu.Price * float64(line.quantity)
		if line.menu.PrepTime > maxPrep {
			maxPrep = line.menu.PrepTime
		}
		orderLines = append(orderLines, models.OrderLine{
			MenuID:    &menuID,
			MenuName:  line.menu.Name,
			Quantity:  line.quantity,
			UnitPrice: line.menu.Price,
		})
	}

	readyIn := time.Duration(maxPrep) * time.Minute
	address := ""
	if req.DeliveryOption == models.DeliveryDelivery {
		readyIn += deliveryPadding
		address = req.DeliveryAddress
	}

	return &models.Order{
		StudentID:        studentID,
		VendorID:         part.vendorID,
		TotalPrice:       total,
		Status:           models.StatusPending,
		DeliveryOption:   req.DeliveryOption,
		DeliveryAddress:  address,
		Notes:            req.Notes,
		EstimatedReadyAt: submittedAt.Add(readyIn),
		Lines:            orderLines,
	}
}

// OrderByID returns one order with lines; buyers see their own orders,
// vendors the orders addressed to them, admins everything.
func (s *Service) OrderByID(ctx context.Context, caller *auth.Principal, orderID int64) (*models.Order, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	if caller.Role != models.RoleAdmin && order.StudentID != caller.UserID && order.VendorID != caller.UserID {
		return nil, apperr.Authorization("you do not have access to this order")
	}
	return order, nil
}

// StudentOrders lists the caller's own orders, newest first.
func (s *Service) StudentOrders(ctx context.Context, caller *auth.Principal, limit, offset int) ([]models.Order, error) {
	if caller.Role != models.RoleStudent {
		return nil, apperr.Authorization("only students have a purchase history")
	}
	orders, err := s.store.OrdersByStudent(ctx, caller.UserID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list student orders: %w", err))
	}
	return orders, nil
}

// VendorOrders lists orders addressed to the calling vendor, newest first.
func (s *Service) VendorOrders(ctx context.Context, caller *auth.Principal, limit, offset int) ([]models.Order, error) {
	if caller.Role != models.RoleVendor {
		return nil, apperr.Authorization("only vendors receive orders")
	}
	orders, err := s.store.OrdersByVendor(ctx, caller.UserID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list vendor orders: %w", err))
	}
	return orders, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > maxOrderPageSize {
		return defaultOrderPageSize
	}
	return limit
}
