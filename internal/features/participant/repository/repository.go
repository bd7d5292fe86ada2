package repository

import (
	"context"

	"raffle-tool-backend/internal/features/participant/models"
)

type ParticipantRepository interface {
	// FindByPhone returns the participant with the exact canonical phone
	// within the raffle scope, or nil when absent.
	FindByPhone(ctx context.Context, raffleID, phone string) (*models.Participant, error)

	// GetByID returns the participant row, or nil when absent.
	GetByID(ctx context.Context, raffleID, id string) (*models.Participant, error)

	// Upsert inserts the participant or merges the supplied non-empty
	// fields into the existing (raffle, phone) row, relying on the
	// store's unique constraint rather than read-then-write. Returns
	// the resulting row.
	Upsert(ctx context.Context, p *models.Participant) (*models.Participant, error)
}
