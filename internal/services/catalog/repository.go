package catalog

import (
	"context"
	"errors"
	"fmt"

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

const menuColumns = `
	m.id, m.vendor_id, m.name, m.description, m.price, COALESCE(m.category, ''),
	COALESCE(m.photo_path, ''), m.is_available, m.prep_time, m.rating, m.rating_count,
	m.is_popular, m.created_at, m.updated_at`

const vendorSummaryColumns = `
	v.id, v.name, COALESCE(v.canteen_name, ''), COALESCE(v.location, '')`

// ListMenus returns available items from approved vendors matching the
// filter. Popular items first, then by rating, then newest.
func (r *Repository) ListMenus(ctx context.Context, f Filter) ([]models.Menu, error) {
	query := `
		SELECT ` + menuColumns + `, ` + vendorSummaryColumns + `
		FROM menus m
		JOIN users v ON v.id = m.vendor_id
		WHERE m.is_available = TRUE AND v.is_approved = TRUE AND v.is_active = TRUE`

	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND (m.name ILIKE $%d OR m.description ILIKE $%d)", len(args), len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND m.category = $%d", len(args))
	}
	if f.VendorID > 0 {
		args = append(args, f.VendorID)
		query += fmt.Sprintf(" AND m.vendor_id = $%d", len(args))
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(`
		ORDER BY m.is_popular DESC, m.rating DESC, m.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenusWithVendor(rows)
}

// PopularMenus returns the highest rated popular items still on sale.
func (r *Repository) PopularMenus(ctx context.Context, limit int) ([]models.Menu, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+menuColumns+`, `+vendorSummaryColumns+`
		FROM menus m
		JOIN users v ON v.id = m.vendor_id
		WHERE m.is_available = TRUE AND m.is_popular = TRUE
		  AND v.is_approved = TRUE AND v.is_active = TRUE
		ORDER BY m.rating DESC, m.rating_count DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenusWithVendor(rows)
}

// MenuByID returns one item with its vendor, or nil when absent.
func (r *Repository) MenuByID(ctx context.Context, id int64) (*models.Menu, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+menuColumns+`, `+vendorSummaryColumns+`
		FROM menus m
		JOIN users v ON v.id = m.vendor_id
		WHERE m.id = $1`, id)

	m, err := scanMenuWithVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MenusByVendor returns everything a vendor owns, newest first.
func (r *Repository) MenusByVendor(ctx context.Context, vendorID int64) ([]models.Menu, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, vendor_id, name, description, price, COALESCE(category, ''),
		       COALESCE(photo_path, ''), is_available, prep_time, rating, rating_count,
		       is_popular, created_at, updated_at
		FROM menus
		WHERE vendor_id = $1
		ORDER BY created_at DESC`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []models.Menu
	for rows.Next() {
		var m models.Menu
		err := rows.Scan(&m.ID, &m.VendorID, &m.Name, &m.Description, &m.Price, &m.Category,
			&m.PhotoPath, &m.IsAvailable, &m.PrepTime, &m.Rating, &m.RatingCount, &m.IsPopular,
			&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func (r *Repository) CreateMenu(ctx context.Context, m *models.Menu) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO menus (vendor_id, name, description, price, category, photo_path,
		                   is_available, prep_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, rating, rating_count, is_popular, created_at, updated_at`,
		m.VendorID, m.Name, m.Description, m.Price, nullIfBlank(m.Category),
		nullIfBlank(m.PhotoPath), m.IsAvailable, m.PrepTime,
	).Scan(&m.ID, &m.Rating, &m.RatingCount, &m.IsPopular, &m.CreatedAt, &m.UpdatedAt)
}

func (r *Repository) UpdateMenu(ctx context.Context, m *models.Menu) error {
	return r.db.QueryRow(ctx, `
		UPDATE menus
		SET name = $2, description = $3, price = $4, category = $5, photo_path = $6,
		    is_available = $7, prep_time = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.Name, m.Description, m.Price, nullIfBlank(m.Category),
		nullIfBlank(m.PhotoPath), m.IsAvailable, m.PrepTime,
	).Scan(&m.UpdatedAt)
}

// DeleteMenu removes an item; historical order lines keep their snapshot.
func (r *Repository) DeleteMenu(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) SetMenuAvailability(ctx context.Context, id int64, available bool) (*models.Menu, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE menus SET is_available = $2, updated_at = NOW() WHERE id = $1`,
		id, available)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.MenuByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuWithVendor(row rowScanner) (*models.Menu, error) {
	var m models.Menu
	var v models.VendorSummary
	err := row.Scan(&m.ID, &m.VendorID, &m.Name, &m.Description, &m.Price, &m.Category,
		&m.PhotoPath, &m.IsAvailable, &m.PrepTime, &m.Rating, &m.RatingCount, &m.IsPopular,
		&m.CreatedAt, &m.UpdatedAt,
		&v.ID, &v.Name, &v.CanteenName, &v.Location)
	if err != nil {
		return nil, err
	}
	m.Vendor = &v
	return &m, nil
}

func scanMenusWithVendor(rows pgx.Rows) ([]models.Menu, error) {
	var menus []models.Menu
	for rows.Next() {
		m, err := scanMenuWithVendor(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

func nullIfBlank(s string) any {
	if s == "" {
		return nil
	}
	return s
}
