package models

import "time"

// Role identifies what kind of principal a user is.
type Role string

const (
	RoleStudent Role = "student"
	RoleVendor  Role = "vendor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// StudentProfile holds fields that only exist for student users.
type StudentProfile struct {
	NIM string `json:"nim"`
}

// VendorProfile holds fields that only exist for vendor users.
// Approved gates menu publishing and order handling.
type VendorProfile struct {
	CanteenName string `json:"canteen_name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	PhotoPath   string `json:"photo_path,omitempty"`
	Approved    bool   `json:"is_approved"`
}

// User is a principal of the system. Exactly one of Student or Vendor is
// non-nil depending on Role; both are nil for admins.
type User struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Role         Role            `json:"role"`
	IsActive     bool            `json:"is_active"`
	Student      *StudentProfile `json:"student,omitempty"`
	Vendor       *VendorProfile  `json:"vendor,omitempty"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsApprovedVendor reports whether the user is a vendor that an admin has
// approved.
func (u *User) IsApprovedVendor() bool {
	return u.Role == RoleVendor && u.Vendor != nil && u.Vendor.Approved
}

// VendorSummary is the slice of vendor data attached to menus and orders
// shown to buyers.
type VendorSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CanteenName string `json:"canteen_name"`
	Location    string `json:"location"`
}

// StudentSummary is the slice of buyer data attached to orders shown to
// vendors.
type StudentSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}
