package models

import "time"

// Product is a catalog entry cached locally so the register can keep selling
// while offline. The remote store owns the canonical copy; the cache is a
// full-replace snapshot, never partially updated.
type Product struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Category  string    `json:"category,omitempty"`
	UnitPrice float64   `json:"unit_price" validate:"gte=0"`
	Unit      string    `json:"unit,omitempty"`
	Stock     float64   `json:"stock"`
	ImageURL  *string   `json:"image_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
