package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

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
	id, name, email, COALESCE(phone, ''), password_hash, role, is_active,
	COALESCE(nim, ''), COALESCE(canteen_name, ''), COALESCE(location, ''),
	COALESCE(description, ''), COALESCE(photo_path, ''), is_approved,
	created_at, updated_at`

// UserByID returns a user or nil when absent. This is the loader the
// auth middleware calls on every request.
func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// UserByEmail returns a user or nil when absent.
func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *Repository) userBy(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new account. A duplicate email surfaces as
// ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	var nim, canteenName, location any
	if u.Student != nil {
		nim = u.Student.NIM
	}
	if u.Vendor != nil {
		canteenName = u.Vendor.CanteenName
		location = u.Vendor.Location
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, is_active,
		                   nim, canteen_name, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		u.Name, u.Email, nullIfBlank(u.Phone), u.PasswordHash, u.Role, u.IsActive,
		nim, canteenName, location,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

// UpdateProfile changes name and phone, returning the fresh record or nil
// when the user no longer exists.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, name, phone string) (*models.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1`,
		id, name, nullIfBlank(phone))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.UserByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser maps a row onto a User, attaching the profile struct matching
// the role.
func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var nim, canteenName, location, description, photoPath string
	var approved bool

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive,
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

func nullIfBlank(s string) any {
	if s == "" {
		return nil
	}
	return s
}
