package service

import (
	"context"
	"time"

	participantmodels "raffle-tool-backend/internal/features/participant/models"
	"raffle-tool-backend/internal/features/ticket/models"
)

// BoardCache is the slice of the cache service the engine needs.
// Satisfied by cache.CacheService; tests plug in a no-op fake.
type BoardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateBoard(ctx context.Context, raffleID, sellerID string) error
	InvalidateRaffle(ctx context.Context, raffleID string) error
}

// InventoryService is the ticket inventory engine: the single owner of
// every number's lifecycle. All callers - HTTP handlers, the payment
// finalizer - go through this interface.
type InventoryService interface {
	// Reserve places an all-or-nothing hold on the numbers for the
	// buyer. Conflicting numbers surface as a structured availability
	// conflict, never as partial application.
	Reserve(ctx context.Context, scope models.Scope, numbers []string, buyer models.BuyerInfo) error

	// ProceedToPayment is the read-only pre-payment availability check.
	// participantID, when non-empty, marks the pay-reserved flow.
	ProceedToPayment(ctx context.Context, scope models.Scope, numbers []string, participantID string) error

	// Sell transitions the numbers to sold for the resolved
	// participant. Invoked by the payment finalizer only.
	Sell(ctx context.Context, scope models.Scope, numbers []string, p *participantmodels.Participant, paymentMethod, proofRef string) error

	// Board returns the UI-facing read model for all 100 numbers,
	// demoting lapsed reservations first.
	Board(ctx context.Context, scope models.Scope) ([]models.BoardEntry, error)

	// SelectionForNumber implements highlight-reserved mode: picking a
	// reserved number yields that participant's entire reserved set, so
	// a buyer pays for exactly their own holds.
	SelectionForNumber(ctx context.Context, scope models.Scope, number string) ([]string, error)

	// SoldCount reports the seller's sold-ticket count for quota
	// display.
	SoldCount(ctx context.Context, scope models.Scope) (int, error)
}
