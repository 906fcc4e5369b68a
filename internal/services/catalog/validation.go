package catalog

import (
	"fmt"

	"kantin/internal/apperr"
)

const (
	maxNameLen        = 150
	maxDescriptionLen = 2000
	maxCategoryLen    = 100
	defaultPrepTime   = 15
	maxPrepTime       = 240
)

// MenuRequest is the body of POST /vendor/menus and PUT /vendor/menus/:id.
type MenuRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	PhotoPath   string  `json:"photo_path"`
	PrepTime    int     `json:"prep_time"`
	IsAvailable *bool   `json:"is_available"`
}

// AvailabilityRequest is the body of PATCH /vendor/menus/:id/availability.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

func validateMenuRequest(req *MenuRequest) error {
	if req.Name == "" {
		return apperr.ValidationField("name", "name is required")
	}
	if len(req.Name) > maxNameLen {
		return apperr.ValidationField("name", fmt.Sprintf("name must not exceed %d characters", maxNameLen))
	}
	if len(req.Description) > maxDescriptionLen {
		return apperr.ValidationField("description", fmt.Sprintf("description must not exceed %d characters", maxDescriptionLen))
	}
	if req.Price < 0 {
		return apperr.ValidationField("price", "price cannot be negative")
	}
	if len(req.Category) > maxCategoryLen {
		return apperr.ValidationField("category", fmt.Sprintf("category must not exceed %d characters", maxCategoryLen))
	}
	if req.PrepTime < 0 || req.PrepTime > maxPrepTime {
		return apperr.ValidationField("prep_time", fmt.Sprintf("prep_time must be between 1 and %d minutes", maxPrepTime))
	}
	return nil
}
