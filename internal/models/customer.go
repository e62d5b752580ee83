package models

import "time"

// Customer is a loyalty/credit customer cached locally for offline lookup.
// Like products, the cache is a full-replace snapshot of the remote set.
type Customer struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Phone         string    `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreditBalance float64   `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
}
