package models

import "time"

// Seller is one storefront within a raffle. Code is the human-readable
// national-ID handle sellers share in links; ID is the opaque key every
// engine call uses.
type Seller struct {
	ID         string    `json:"id"`
	RaffleID   string    `json:"raffle_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	MaxAllowed int       `json:"max_allowed"`
	HoldDays   int       `json:"hold_days"` // 0 = use the configured default
	CreatedAt  time.Time `json:"created_at"`
}

// Raffle carries the configuration the engine reads: the draw date caps
// reservation expiry.
type Raffle struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	DrawDate  *time.Time `json:"draw_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
