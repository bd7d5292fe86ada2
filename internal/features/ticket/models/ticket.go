package models

import (
	"regexp"
	"time"
)

// Status is the lifecycle state of one raffle number.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
)

var numberPattern = regexp.MustCompile(`^[0-9]{2}$`)

// ValidNumber reports whether s is a canonical two-digit ticket number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// Scope identifies the tenant of every engine call: one raffle, one
// seller storefront. Both ids are opaque and already resolved.
type Scope struct {
	RaffleID string
	SellerID string
}

// Ticket is one raffle number. Rows are created on first claim and
// only ever status-transitioned, never deleted. Buyer fields are
// denormalized onto the row for voucher rendering.
type Ticket struct {
	RaffleID             string     `json:"raffle_id"`
	Number               string     `json:"number"`
	SellerID             string     `json:"seller_id,omitempty"`
	Status               Status     `json:"status"`
	ParticipantID        *string    `json:"participant_id,omitempty"`
	ParticipantName      string     `json:"participant_name,omitempty"`
	ParticipantPhone     string     `json:"participant_phone,omitempty"`
	ParticipantCedula    string     `json:"participant_cedula,omitempty"`
	ReservationExpiresAt *time.Time `json:"reservation_expires_at,omitempty"`
	PaymentApproved      bool       `json:"payment_approved"`
	PaymentProofRef      *string    `json:"payment_proof_ref,omitempty"`
	PaymentMethod        string     `json:"payment_method,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ReservationExpired reports whether a reserved ticket's hold has
// lapsed at the given instant. Expired holds count as available for
// new claims even before the sweep demotes the row.
func (t *Ticket) ReservationExpired(now time.Time) bool {
	return t.Status == StatusReserved &&
		t.ReservationExpiresAt != nil &&
		t.ReservationExpiresAt.Before(now)
}

// BuyerInfo is the buyer data a reservation or purchase form supplies.
type BuyerInfo struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Cedula            string `json:"cedula,omitempty"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"address,omitempty"`
	ProductSuggestion string `json:"product_suggestion,omitempty"`
	Note              string `json:"note,omitempty"`
}

// BoardEntry is the UI-facing read model for one number. Sold numbers
// are permanently non-selectable; that is part of the read contract,
// not a styling concern.
type BoardEntry struct {
	Number        string  `json:"number"`
	Status        Status  `json:"status"`
	Selectable    bool    `json:"selectable"`
	ParticipantID *string `json:"participant_id,omitempty"`
}

// BoardSize is the count of numbers in one raffle: 00 through 99.
const BoardSize = 100
