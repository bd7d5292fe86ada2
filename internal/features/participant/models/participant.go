package models

import "time"

// Participant is the buyer record scoped to one raffle. The same phone
// in two raffles is two distinct participants; uniqueness is enforced
// at (raffle, phone) granularity by the store.
type Participant struct {
	ID                string    `json:"id"`
	RaffleID          string    `json:"raffle_id"`
	Phone             string    `json:"phone"` // canonical international form
	Name              string    `json:"name"`
	Cedula            string    `json:"cedula,omitempty"`
	Email             string    `json:"email,omitempty"`
	Address           string    `json:"address,omitempty"`
	ProductSuggestion string    `json:"product_suggestion,omitempty"`
	Note              string    `json:"note,omitempty"`
	SellerID          string    `json:"seller_id,omitempty"` // seller of original contact
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ParticipantInput carries the fields a reservation or payment form may
// supply. Empty fields never overwrite populated ones on merge.
type ParticipantInput struct {
	Phone             string `json:"phone"`
	Name              string `json:"name"`
	Cedula            string `json:"cedula"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	ProductSuggestion string `json:"product_suggestion"`
	Note              string `json:"note"`
}
