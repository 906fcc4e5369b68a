package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kantin/internal/database"
	"kantin/internal/models"
)

// Repository is the PostgreSQL implementation of Store.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// MenusByIDs resolves menu items in one batch lookup.
func (r *Repository) MenusByIDs(ctx context.Context, ids []int64) (map[int64]models.Menu, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, vendor_id, name, description, price, COALESCE(category, ''),
		       COALESCE(photo_path, ''), is_available, prep_time, rating, rating_count, is_popular,
		       created_at, updated_at
		FROM menus
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menus := make(map[int64]models.Menu, len(ids))
	for rows.Next() {
		var m models.Menu
		err := rows.Scan(&m.ID, &m.VendorID, &m.Name, &m.Description, &m.Price, &m.Category,
			&m.PhotoPath, &m.IsAvailable, &m.PrepTime, &m.Rating, &m.RatingCount, &m.IsPopular,
			&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		menus[m.ID] = m
	}
	return menus, rows.Err()
}

// CreateOrders persists every order and its lines in one transaction.
// Order numbers come from a dedicated sequence read inside the same
// transaction, so they are unique by construction.
func (r *Repository) CreateOrders(ctx context.Context, orders []*models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, order := range orders {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("next order number: %w", err)
		}
		order.OrderNumber = formatOrderNumber(time.Now().UTC(), seq)

		err := tx.QueryRow(ctx, `
			INSERT INTO orders (order_number, student_id, vendor_id, total_price, status,
			                    delivery_option, delivery_address, notes, estimated_ready_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at`,
			order.OrderNumber, order.StudentID, order.VendorID, order.TotalPrice, order.Status,
			order.DeliveryOption, nullIfEmpty(order.DeliveryAddress), nullIfEmpty(order.Notes),
			order.EstimatedReadyAt,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO order_lines (order_id, menu_id, menu_name, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				line.OrderID, line.MenuID, line.MenuName, line.Quantity, line.UnitPrice,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// formatOrderNumber builds the human-readable order reference.
func formatOrderNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", date.Format("20060102"), seq)
}

// OrderByID fetches a single order with lines and vendor attached.
// Returns (nil, nil) when the order does not exist.
func (r *Repository) OrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	var vendor models.VendorSummary
	var student models.StudentSummary
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.order_number, o.student_id, o.vendor_id, o.total_price, o.status,
		       o.delivery_option, COALESCE(o.delivery_address, ''), COALESCE(o.notes, ''),
		       o.estimated_ready_at, o.created_at, o.updated_at,
		       v.id, v.name, COALESCE(v.canteen_name, ''), COALESCE(v.location, ''),
		       s.id, s.name, COALESCE(s.phone, '')
		FROM orders o
		JOIN users v ON v.id = o.vendor_id
		JOIN users s ON s.id = o.student_id
		WHERE o.id = $1`, id,
	).Scan(&o.ID, &o.OrderNumber, &o.StudentID, &o.VendorID, &o.TotalPrice, &o.Status,
		&o.DeliveryOption, &o.DeliveryAddress, &o.Notes,
		&o.EstimatedReadyAt, &o.CreatedAt, &o.UpdatedAt,
		&vendor.ID, &vendor.Name, &vendor.CanteenName, &vendor.Location,
		&student.ID, &student.Name, &student.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Vendor = &vendor
	o.Student = &student

	lines, err := r.linesForOrders(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// OrdersByStudent lists a buyer's orders, newest first, with lines and
// vendor attached.
func (r *Repository) OrdersByStudent(ctx context.Context, studentID int64, limit, offset int) ([]models.Order, error) {
	return r.listOrders(ctx, "o.student_id", studentID, limit, offset)
}

// OrdersByVendor lists a vendor's incoming orders, newest first.
func (r *Repository) OrdersByVendor(ctx context.Context, vendorID int64, limit, offset int) ([]models.Order, error) {
	return r.listOrders(ctx, "o.vendor_id", vendorID, limit, offset)
}

func (r *Repository) listOrders(ctx context.Context, ownerColumn string, ownerID int64, limit, offset int) ([]models.Order, error) {
	// ownerColumn is one of two fixed identifiers, never user input.
	query := fmt.Sprintf(`
		SELECT o.id, o.order_number, o.student_id, o.vendor_id, o.total_price, o.status,
		       o.delivery_option, COALESCE(o.delivery_address, ''), COALESCE(o.notes, ''),
		       o.estimated_ready_at, o.created_at, o.updated_at,
		       v.id, v.name, COALESCE(v.canteen_name, ''), COALESCE(v.location, ''),
		       s.id, s.name, COALESCE(s.phone, '')
		FROM orders o
		JOIN users v ON v.id = o.vendor_id
		JOIN users s ON s.id = o.student_id
		WHERE %s = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`, ownerColumn)

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	var orderIDs []int64
	for rows.Next() {
		var o models.Order
		var vendor models.VendorSummary
		var student models.StudentSummary
		err := rows.Scan(&o.ID, &o.OrderNumber, &o.StudentID, &o.VendorID, &o.TotalPrice, &o.Status,
			&o.DeliveryOption, &o.DeliveryAddress, &o.Notes,
			&o.EstimatedReadyAt, &o.CreatedAt, &o.UpdatedAt,
			&vendor.ID, &vendor.Name, &vendor.CanteenName, &vendor.Location,
			&student.ID, &student.Name, &student.Phone)
		if err != nil {
			return nil, err
		}
		o.Vendor = &vendor
		o.Student = &student
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return orders, nil
	}

	lines, err := r.linesForOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// linesForOrders loads the lines of several orders in one query.
func (r *Repository) linesForOrders(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_id, menu_name, quantity, unit_price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[int64][]models.OrderLine)
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuID, &l.MenuName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	return lines, rows.Err()
}

// UpdateOrderStatus persists a single status change and returns the
// refreshed order.
func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.OrderByID(ctx, orderID)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
