package model

import "time"

// Purchase is a plain historical record of a bought item.  There is no state
// machine here; status is free text (pending, completed, cancelled, refunded)
// maintained by admins.
type Purchase struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	ItemName        string    `json:"item_name"`
	ItemDescription *string   `json:"item_description,omitempty"`
	PricePaise      int64     `json:"price_paise"`
	Quantity        int       `json:"quantity"`
	TotalPaise      int64     `json:"total_paise"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
