package repository

import (
	"context"

	"raffle-tool-backend/internal/features/seller/models"
)

type SellerRepository interface {
	// GetByID looks a seller up by opaque id within a raffle.
	GetByID(ctx context.Context, raffleID, sellerID string) (*models.Seller, error)

	// GetByCode looks a seller up by the human-readable code.
	GetByCode(ctx context.Context, raffleID, code string) (*models.Seller, error)

	// GetRaffle reads the raffle configuration row.
	GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error)
}
