package repository

import (
	"context"

	"raffle-tool-backend/internal/features/payment/models"
)

type FraudReportRepository interface {
	// UpsertPending inserts a pending report for the triple, or updates
	// the message of the one already pending.
	UpsertPending(ctx context.Context, report models.FraudReport) (*models.FraudReport, error)

	// FindPending returns the pending report for the triple, or nil.
	FindPending(ctx context.Context, participantID, raffleID, sellerID string) (*models.FraudReport, error)
}
