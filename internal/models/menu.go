package models

import "time"

// Menu is a single item on a vendor's menu.
type Menu struct {
	ID          int64          `json:"id"`
	VendorID    int64          `json:"vendor_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category,omitempty"`
	PhotoPath   string         `json:"photo_path,omitempty"`
	IsAvailable bool           `json:"is_available"`
	PrepTime    int            `json:"prep_time"`
	Rating      float64        `json:"rating"`
	RatingCount int            `json:"rating_count"`
	IsPopular   bool           `json:"is_popular"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Vendor      *VendorSummary `json:"vendor,omitempty"`
}
