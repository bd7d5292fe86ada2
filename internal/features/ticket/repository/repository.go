package repository

import (
	"context"
	"time"

	"raffle-tool-backend/internal/features/ticket/models"
)

// ReserveBatch is one all-or-nothing reservation write. The repository
// applies every number in a single transaction; on any conflict nothing
// is committed and the offending numbers come back.
type ReserveBatch struct {
	RaffleID          string
	SellerID          string
	Numbers           []string
	ParticipantID     string
	ParticipantName   string
	ParticipantPhone  string
	ParticipantCedula string
	ExpiresAt         time.Time
	Now               time.Time
	MaxAllowed        int
}

// SellBatch is one all-or-nothing sold-transition write. Numbers may be
// available (direct purchase) or reserved by ParticipantID
// (pay-reserved); anything else is a conflict.
type SellBatch struct {
	RaffleID          string
	SellerID          string
	Numbers           []string
	ParticipantID     string
	ParticipantName   string
	ParticipantPhone  string
	ParticipantCedula string
	PaymentMethod     string
	PaymentProofRef   string // empty for cash sales
	Now               time.Time
	MaxAllowed        int
}

type TicketRepository interface {
	// ListByRaffle returns every existing ticket row for a raffle.
	// Numbers with no row yet are implicitly available.
	ListByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error)

	// FindByNumber re-fetches one ticket from the authoritative store,
	// or nil when no row exists.
	FindByNumber(ctx context.Context, raffleID, number string) (*models.Ticket, error)

	// ReservedNumbersByParticipant returns the numbers one participant
	// holds under a live reservation at the given instant, sorted.
	// Lapsed holds are excluded.
	ReservedNumbersByParticipant(ctx context.Context, raffleID, participantID string, now time.Time) ([]string, error)

	// SoldCount counts a seller's sold tickets.
	SoldCount(ctx context.Context, raffleID, sellerID string) (int, error)

	// ReserveAll executes the batch atomically. conflicts is non-empty
	// (and the transaction rolled back) when any number is not
	// claimable; quotaErr reports the in-transaction authoritative
	// quota re-check.
	ReserveAll(ctx context.Context, batch ReserveBatch) (conflicts []string, err error)

	// SellAll executes the sold transition atomically with the same
	// conflict contract. Sold rows are never reverted by this call.
	SellAll(ctx context.Context, batch SellBatch) (conflicts []string, err error)

	// DemoteExpired returns every reserved ticket whose hold lapsed
	// before now to available, clearing buyer fields. It reports the
	// raffle ids touched so callers can invalidate caches.
	DemoteExpired(ctx context.Context, now time.Time) ([]string, error)
}
