package service

import (
	"context"

	"github.com/rs/zerolog"

	"raffle-tool-backend/internal/common/clock"
	apperrors "raffle-tool-backend/internal/common/errors"
	participantmodels "raffle-tool-backend/internal/features/participant/models"
	participantservice "raffle-tool-backend/internal/features/participant/service"
	"raffle-tool-backend/internal/features/payment/models"
	"raffle-tool-backend/internal/features/payment/repository"
	sellerservice "raffle-tool-backend/internal/features/seller/service"
	ticketmodels "raffle-tool-backend/internal/features/ticket/models"
	ticketservice "raffle-tool-backend/internal/features/ticket/service"
	"raffle-tool-backend/internal/platform/storage"
)

// VoucherNotifier consumes a finalized sale. Receipt rendering and
// export happen behind this interface, outside the engine.
type VoucherNotifier interface {
	SaleFinalized(ctx context.Context, receipt models.SaleReceipt)
}

// LogNotifier is the default handoff: it records the receipt and does
// nothing else.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) SaleFinalized(_ context.Context, receipt models.SaleReceipt) {
	n.Logger.Info().
		Str("raffle_id", receipt.RaffleID).
		Str("seller_id", receipt.SellerID).
		Str("participant_id", receipt.ParticipantID).
		Strs("numbers", receipt.Numbers).
		Str("payment_method", receipt.PaymentMethod).
		Msg("Sale finalized")
}

type PaymentService interface {
	// Finalize runs the complete-payment orchestration and always
	// returns a tagged result; the error return carries only transport
	// failures the HTTP layer cannot classify.
	Finalize(ctx context.Context, scope ticketmodels.Scope, input models.FinalizeInput) (*models.FinalizeResult, error)
}

type paymentService struct {
	inventory      ticketservice.InventoryService
	participantSvc participantservice.ParticipantService
	sellerSvc      sellerservice.SellerService
	frauds         repository.FraudReportRepository
	proofs         storage.ProofStore
	notifier       VoucherNotifier
	clock          clock.Clock
	logger         zerolog.Logger
}

func NewPaymentService(
	inventory ticketservice.InventoryService,
	participantSvc participantservice.ParticipantService,
	sellerSvc sellerservice.SellerService,
	frauds repository.FraudReportRepository,
	proofs storage.ProofStore,
	notifier VoucherNotifier,
	clk clock.Clock,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		inventory:      inventory,
		participantSvc: participantSvc,
		sellerSvc:      sellerSvc,
		frauds:         frauds,
		proofs:         proofs,
		notifier:       notifier,
		clock:          clk,
		logger:         logger,
	}
}

// Finalize runs the sale steps in a fixed order: quota re-check, proof
// upload (transfer only, aborts before any mutation), participant
// resolution, the sold transition, then the best-effort fraud upsert
// and voucher handoff. A fraud-report failure never reverts an
// otherwise-successful sale.
func (s *paymentService) Finalize(ctx context.Context, scope ticketmodels.Scope, input models.FinalizeInput) (*models.FinalizeResult, error) {
	if err := validateInput(input); err != nil {
		return errorResult(err), nil
	}

	seller, err := s.sellerSvc.Resolve(ctx, scope.RaffleID, scope.SellerID)
	if err != nil {
		return errorResult(err), nil
	}
	scope.SellerID = seller.ID

	sold, err := s.inventory.SoldCount(ctx, scope)
	if err != nil {
		return errorResult(err), nil
	}
	if err := ticketservice.ValidateQuota(seller.ID, sold, len(input.Numbers), seller.MaxAllowed); err != nil {
		return errorResult(err), nil
	}

	proofRef := ""
	if input.PaymentMethod == models.MethodTransfer {
		proofRef, err = s.proofs.Upload(ctx, input.Proof.Data, input.Proof.ContentType)
		if err != nil {
			return errorResult(apperrors.NewUpstreamError("proof upload", err)), nil
		}
	}

	participant, err := s.resolveParticipant(ctx, scope, input)
	if err != nil {
		s.logOrphanedProof(proofRef, err)
		return errorResult(err), nil
	}

	if err := s.inventory.Sell(ctx, scope, input.Numbers, participant, input.PaymentMethod, proofRef); err != nil {
		s.logOrphanedProof(proofRef, err)
		if numbers, ok := apperrors.ConflictNumbers(err); ok {
			return &models.FinalizeResult{
				Status:          models.ResultConflict,
				ConflictNumbers: numbers,
				Message:         "some numbers are no longer available",
			}, nil
		}
		return errorResult(err), nil
	}

	if input.FraudNote != "" {
		if _, err := s.frauds.UpsertPending(ctx, models.FraudReport{
			ParticipantID: participant.ID,
			RaffleID:      scope.RaffleID,
			SellerID:      seller.ID,
			Message:       input.FraudNote,
		}); err != nil {
			s.logger.Error().Err(err).
				Str("participant_id", participant.ID).
				Str("seller_id", seller.ID).
				Msg("Fraud report upsert failed; sale stands")
		}
	}

	receipt := models.SaleReceipt{
		RaffleID:        scope.RaffleID,
		SellerID:        seller.ID,
		ParticipantID:   participant.ID,
		BuyerName:       participant.Name,
		BuyerPhone:      participant.Phone,
		BuyerCedula:     participant.Cedula,
		Numbers:         input.Numbers,
		PaymentMethod:   input.PaymentMethod,
		PaymentProofRef: proofRef,
		SoldAt:          s.clock.Now(),
	}
	s.notifier.SaleFinalized(ctx, receipt)

	return &models.FinalizeResult{Status: models.ResultSuccess, Receipt: &receipt}, nil
}

// resolveParticipant prefers the reservation's participant id; direct
// purchases go through the directory's find-or-create merge.
func (s *paymentService) resolveParticipant(ctx context.Context, scope ticketmodels.Scope, input models.FinalizeInput) (*participantmodels.Participant, error) {
	if input.ParticipantID != "" {
		return s.participantSvc.GetByID(ctx, scope.RaffleID, input.ParticipantID)
	}
	return s.participantSvc.FindOrCreate(ctx, scope.RaffleID, scope.SellerID, participantmodels.ParticipantInput{
		Phone:             input.Buyer.Phone,
		Name:              input.Buyer.Name,
		Cedula:            input.Buyer.Cedula,
		Email:             input.Buyer.Email,
		Address:           input.Buyer.Address,
		ProductSuggestion: input.Buyer.ProductSuggestion,
		Note:              input.Buyer.Note,
	})
}

// logOrphanedProof records a proof that was uploaded before a later
// step failed. The file stays in storage for manual cleanup.
func (s *paymentService) logOrphanedProof(proofRef string, cause error) {
	if proofRef == "" {
		return
	}
	s.logger.Warn().
		Str("proof_ref", proofRef).
		Err(cause).
		Msg("Proof uploaded but sale did not complete")
}

func validateInput(input models.FinalizeInput) error {
	if len(input.Numbers) == 0 {
		return apperrors.NewValidationError("numbers", "at least one number is required")
	}
	if !models.ValidMethod(input.PaymentMethod) {
		return apperrors.NewValidationError("payment_method", "must be transfer or cash")
	}
	if input.PaymentMethod == models.MethodTransfer && (input.Proof == nil || len(input.Proof.Data) == 0) {
		return apperrors.NewValidationError("proof", "transfer payments require a proof image")
	}
	if input.ParticipantID == "" {
		if input.Buyer.Name == "" {
			return apperrors.NewValidationError("name", "cannot be empty")
		}
		if input.Buyer.Phone == "" {
			return apperrors.NewValidationError("phone", "cannot be empty")
		}
	}
	return nil
}

func errorResult(err error) *models.FinalizeResult {
	result := &models.FinalizeResult{Status: models.ResultError, Message: err.Error()}
	if appErr, ok := apperrors.AsAppError(err); ok {
		result.Message = appErr.Message
		result.ErrorCode = string(appErr.Code)
	}
	return result
}
