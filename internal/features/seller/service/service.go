package service

import (
	"context"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/features/seller/models"
	"raffle-tool-backend/internal/features/seller/repository"

	"github.com/google/uuid"
)

// SellerService resolves seller references once at the edge. Inside the
// engine only opaque ids circulate.
type SellerService interface {
	// Resolve accepts either an opaque seller id or the human-readable
	// code and returns the seller row. Failure to resolve is a hard
	// error, never a silent fallback.
	Resolve(ctx context.Context, raffleID, idOrCode string) (*models.Seller, error)

	// GetRaffle reads the raffle configuration; missing raffles are a
	// resolution error as well.
	GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error)
}

type sellerService struct {
	repo repository.SellerRepository
}

func NewSellerService(repo repository.SellerRepository) SellerService {
	return &sellerService{repo: repo}
}

func (s *sellerService) Resolve(ctx context.Context, raffleID, idOrCode string) (*models.Seller, error) {
	if idOrCode == "" {
		return nil, apperrors.NewResolutionError("seller", "(empty)")
	}

	// Opaque ids are UUIDs; anything else is treated as a code.
	if _, err := uuid.Parse(idOrCode); err == nil {
		seller, err := s.repo.GetByID(ctx, raffleID, idOrCode)
		if err != nil {
			return nil, apperrors.NewUpstreamError("seller lookup by id", err)
		}
		if seller != nil {
			return seller, nil
		}
	}

	seller, err := s.repo.GetByCode(ctx, raffleID, idOrCode)
	if err != nil {
		return nil, apperrors.NewUpstreamError("seller lookup by code", err)
	}
	if seller == nil {
		return nil, apperrors.NewResolutionError("seller", idOrCode)
	}
	return seller, nil
}

func (s *sellerService) GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error) {
	raffle, err := s.repo.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, apperrors.NewUpstreamError("raffle lookup", err)
	}
	if raffle == nil {
		return nil, apperrors.NewResolutionError("raffle", raffleID)
	}
	return raffle, nil
}
