package service

import (
	"context"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/phone"
	"raffle-tool-backend/internal/features/participant/models"
	"raffle-tool-backend/internal/features/participant/repository"

	"github.com/google/uuid"
)

// ParticipantService is the participant directory: it matches or
// creates the human behind a claim, keyed by (phone, raffle).
type ParticipantService interface {
	FindByPhone(ctx context.Context, raffleID, rawPhone string) (*models.Participant, error)
	GetByID(ctx context.Context, raffleID, id string) (*models.Participant, error)

	// FindOrCreate normalizes the phone, then finds or inserts the
	// participant. Repeat calls merge newly supplied non-empty fields;
	// a brand-new participant requires a non-empty name.
	FindOrCreate(ctx context.Context, raffleID, sellerID string, input models.ParticipantInput) (*models.Participant, error)
}

type participantService struct {
	repo       repository.ParticipantRepository
	normalizer *phone.Normalizer
}

func NewParticipantService(repo repository.ParticipantRepository, normalizer *phone.Normalizer) ParticipantService {
	return &participantService{repo: repo, normalizer: normalizer}
}

func (s *participantService) FindByPhone(ctx context.Context, raffleID, rawPhone string) (*models.Participant, error) {
	canonical := s.normalizer.Normalize(rawPhone)
	if canonical == "" {
		return nil, apperrors.NewValidationError("phone", "cannot be empty")
	}

	p, err := s.repo.FindByPhone(ctx, raffleID, canonical)
	if err != nil {
		return nil, apperrors.NewUpstreamError("participant lookup", err)
	}
	return p, nil
}

func (s *participantService) GetByID(ctx context.Context, raffleID, id string) (*models.Participant, error) {
	p, err := s.repo.GetByID(ctx, raffleID, id)
	if err != nil {
		return nil, apperrors.NewUpstreamError("participant lookup", err)
	}
	if p == nil {
		return nil, apperrors.NewResolutionError("participant", id)
	}
	return p, nil
}

func (s *participantService) FindOrCreate(ctx context.Context, raffleID, sellerID string, input models.ParticipantInput) (*models.Participant, error) {
	canonical := s.normalizer.Normalize(input.Phone)
	if canonical == "" {
		return nil, apperrors.NewValidationError("phone", "cannot be empty")
	}

	existing, err := s.repo.FindByPhone(ctx, raffleID, canonical)
	if err != nil {
		return nil, apperrors.NewUpstreamError("participant lookup", err)
	}
	if existing == nil && input.Name == "" {
		return nil, apperrors.NewValidationError("name", "required for a new participant")
	}

	// The upsert merge is idempotent: two calls with the same phone and
	// different supplementary data leave one row holding the union of
	// both calls' non-empty fields. The unique constraint resolves the
	// concurrent first-insert race without a second read.
	p := &models.Participant{
		ID:                uuid.New().String(),
		RaffleID:          raffleID,
		Phone:             canonical,
		Name:              input.Name,
		Cedula:            input.Cedula,
		Email:             input.Email,
		Address:           input.Address,
		ProductSuggestion: input.ProductSuggestion,
		Note:              input.Note,
		SellerID:          sellerID,
	}

	result, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, apperrors.NewUpstreamError("participant upsert", err)
	}
	return result, nil
}
