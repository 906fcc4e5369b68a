package admin

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

const userColumns = `
	id, name, email, COALESCE(phone, ''), role, is_active,
	COALESCE(nim, ''), COALESCE(canteen_name, ''), COALESCE(location, ''),
	COALESCE(description, ''), COALESCE(photo_path, ''), is_approved,
	created_at, updated_at`

// Users lists accounts matching the filter, newest first.
func (r *Repository) Users(ctx context.Context, f UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []any{}

	if f.Role != "" {
		args = append(args, f.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// UserByID returns one account or nil when absent.
func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUserRow(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) SetUserActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.UserByID(ctx, id)
}

// PendingVendors lists vendors awaiting approval, oldest application
// first.
func (r *Repository) PendingVendors(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = 'vendor' AND is_approved = FALSE
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *Repository) ApproveVendor(ctx context.Context, id int64) (*models.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1 AND role = 'vendor'`, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.UserByID(ctx, id)
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PlatformStats aggregates the dashboard numbers in one round trip per
// table.
func (r *Repository) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var s PlatformStats

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE role = 'student'),
		       COUNT(*) FILTER (WHERE role = 'vendor'),
		       COUNT(*) FILTER (WHERE role = 'vendor' AND is_approved = FALSE)
		FROM users`).Scan(&s.TotalStudents, &s.TotalVendors, &s.PendingVendors)
	if err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM menus`).Scan(&s.TotalMenus); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COALESCE(SUM(total_price) FILTER (WHERE status = 'completed'), 0)
		FROM orders`).Scan(&s.TotalOrders, &s.CompletedOrders, &s.Revenue)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (*models.User, error) {
	var u models.User
	var nim, canteenName, location, description, photoPath string
	var approved bool

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.IsActive,
		&nim, &canteenName, &location, &description, &photoPath, &approved,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	switch u.Role {
	case models.RoleStudent:
		u.Student = &models.StudentProfile{NIM: nim}
	case models.RoleVendor:
		u.Vendor = &models.VendorProfile{
			CanteenName: canteenName,
			Location:    location,
			Description: description,
			PhotoPath:   photoPath,
			Approved:    approved,
		}
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
