package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"raffle-tool-backend/internal/common/cache"
	"raffle-tool-backend/internal/common/clock"
	"raffle-tool-backend/internal/common/config"
	apperrors "raffle-tool-backend/internal/common/errors"
	participantmodels "raffle-tool-backend/internal/features/participant/models"
	participantservice "raffle-tool-backend/internal/features/participant/service"
	sellerservice "raffle-tool-backend/internal/features/seller/service"
	"raffle-tool-backend/internal/features/ticket/models"
	"raffle-tool-backend/internal/features/ticket/repository"
)

const (
	boardCacheTTL     = 10 * time.Second
	soldCountCacheTTL = 10 * time.Second

	// MinCedulaLength is the shortest accepted national-ID string.
	MinCedulaLength = 5
)

type inventoryService struct {
	repo           repository.TicketRepository
	participantSvc participantservice.ParticipantService
	sellerSvc      sellerservice.SellerService
	cache          BoardCache
	clock          clock.Clock
	config         *config.Config
	logger         zerolog.Logger
}

func NewInventoryService(
	repo repository.TicketRepository,
	participantSvc participantservice.ParticipantService,
	sellerSvc sellerservice.SellerService,
	cacheSvc BoardCache,
	clk clock.Clock,
	cfg *config.Config,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		repo:           repo,
		participantSvc: participantSvc,
		sellerSvc:      sellerSvc,
		cache:          cacheSvc,
		clock:          clk,
		config:         cfg,
		logger:         logger,
	}
}

func (s *inventoryService) Reserve(ctx context.Context, scope models.Scope, numbers []string, buyer models.BuyerInfo) error {
	numbers, err := validateNumbers(numbers)
	if err != nil {
		return err
	}
	if err := validateBuyer(buyer); err != nil {
		return err
	}

	seller, err := s.sellerSvc.Resolve(ctx, scope.RaffleID, scope.SellerID)
	if err != nil {
		return err
	}
	raffle, err := s.sellerSvc.GetRaffle(ctx, scope.RaffleID)
	if err != nil {
		return err
	}

	// Early rejection on a fresh count; the write transaction repeats
	// this check authoritatively.
	sold, err := s.repo.SoldCount(ctx, scope.RaffleID, seller.ID)
	if err != nil {
		return apperrors.NewUpstreamError("sold count", err)
	}
	if err := ValidateQuota(seller.ID, sold, len(numbers), seller.MaxAllowed); err != nil {
		return err
	}

	participant, err := s.participantSvc.FindOrCreate(ctx, scope.RaffleID, seller.ID, participantmodels.ParticipantInput{
		Phone:             buyer.Phone,
		Name:              buyer.Name,
		Cedula:            buyer.Cedula,
		Email:             buyer.Email,
		Address:           buyer.Address,
		ProductSuggestion: buyer.ProductSuggestion,
		Note:              buyer.Note,
	})
	if err != nil {
		return err
	}

	now := s.clock.Now()
	holdDays := seller.HoldDays
	if holdDays <= 0 {
		holdDays = s.config.Raffle.DefaultHoldDays
	}
	expiresAt := ComputeExpiry(now, holdDays, raffle.DrawDate)

	conflicts, err := s.repo.ReserveAll(ctx, repository.ReserveBatch{
		RaffleID:          scope.RaffleID,
		SellerID:          seller.ID,
		Numbers:           numbers,
		ParticipantID:     participant.ID,
		ParticipantName:   participant.Name,
		ParticipantPhone:  participant.Phone,
		ParticipantCedula: participant.Cedula,
		ExpiresAt:         expiresAt,
		Now:               now,
		MaxAllowed:        seller.MaxAllowed,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeQuotaExceeded) {
			return err
		}
		return apperrors.NewUpstreamError("reservation write", err)
	}
	if len(conflicts) > 0 {
		return apperrors.NewAvailabilityConflictError(conflicts)
	}

	s.invalidate(ctx, scope.RaffleID, seller.ID)
	s.logger.Info().
		Str("raffle_id", scope.RaffleID).
		Str("seller_id", seller.ID).
		Str("participant_id", participant.ID).
		Strs("numbers", numbers).
		Time("expires_at", expiresAt).
		Msg("Numbers reserved")
	return nil
}

// ProceedToPayment re-validates availability without mutating state.
// Incompatible numbers are never concluded from a cached view alone:
// each suspect is re-fetched from the store first.
func (s *inventoryService) ProceedToPayment(ctx context.Context, scope models.Scope, numbers []string, participantID string) error {
	numbers, err := validateNumbers(numbers)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	snapshot := s.snapshotIndex(ctx, scope)

	var conflicts []string
	for _, number := range numbers {
		if t, ok := snapshot[number]; ok && sellableTo(t, participantID, now) {
			continue
		}
		// Missing or suspect in the snapshot: the authoritative store
		// decides, not a possibly-stale view.
		t, err := s.repo.FindByNumber(ctx, scope.RaffleID, number)
		if err != nil {
			return apperrors.NewUpstreamError("ticket lookup", err)
		}
		if t == nil || sellableTo(t, participantID, now) {
			continue
		}
		conflicts = append(conflicts, number)
	}

	if len(conflicts) > 0 {
		return apperrors.NewAvailabilityConflictError(conflicts)
	}
	return nil
}

func (s *inventoryService) Sell(ctx context.Context, scope models.Scope, numbers []string, p *participantmodels.Participant, paymentMethod, proofRef string) error {
	numbers, err := validateNumbers(numbers)
	if err != nil {
		return err
	}
	if p == nil || p.ID == "" {
		return apperrors.NewResolutionError("participant", "(none)")
	}

	seller, err := s.sellerSvc.Resolve(ctx, scope.RaffleID, scope.SellerID)
	if err != nil {
		return err
	}

	conflicts, err := s.repo.SellAll(ctx, repository.SellBatch{
		RaffleID:          scope.RaffleID,
		SellerID:          seller.ID,
		Numbers:           numbers,
		ParticipantID:     p.ID,
		ParticipantName:   p.Name,
		ParticipantPhone:  p.Phone,
		ParticipantCedula: p.Cedula,
		PaymentMethod:     paymentMethod,
		PaymentProofRef:   proofRef,
		Now:               s.clock.Now(),
		MaxAllowed:        seller.MaxAllowed,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeQuotaExceeded) {
			return err
		}
		return apperrors.NewUpstreamError("sale write", err)
	}
	if len(conflicts) > 0 {
		return apperrors.NewAvailabilityConflictError(conflicts)
	}

	s.invalidate(ctx, scope.RaffleID, seller.ID)
	s.logger.Info().
		Str("raffle_id", scope.RaffleID).
		Str("seller_id", seller.ID).
		Str("participant_id", p.ID).
		Strs("numbers", numbers).
		Str("payment_method", paymentMethod).
		Msg("Numbers sold")
	return nil
}

func (s *inventoryService) Board(ctx context.Context, scope models.Scope) ([]models.BoardEntry, error) {
	// Lazy half of expiry: demote lapsed holds before reading, so an
	// expired reservation is visible as available even between sweeps.
	if raffles, err := s.repo.DemoteExpired(ctx, s.clock.Now()); err != nil {
		s.logger.Warn().Err(err).Msg("On-read expiry demotion failed")
	} else {
		for _, raffleID := range raffles {
			s.invalidateRaffle(ctx, raffleID)
		}
	}

	key := cache.BoardKey(scope.RaffleID, scope.SellerID)
	var entries []models.BoardEntry
	if err := s.cache.Get(ctx, key, &entries); err == nil && len(entries) == models.BoardSize {
		return entries, nil
	}

	tickets, err := s.repo.ListByRaffle(ctx, scope.RaffleID)
	if err != nil {
		return nil, apperrors.NewUpstreamError("board read", err)
	}

	entries = buildBoard(tickets, s.clock.Now())
	if err := s.cache.Set(ctx, key, entries, boardCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Board cache write failed")
	}
	return entries, nil
}

func (s *inventoryService) SelectionForNumber(ctx context.Context, scope models.Scope, number string) ([]string, error) {
	if !models.ValidNumber(number) {
		return nil, apperrors.NewValidationError("number", "must be a two-digit string")
	}

	t, err := s.repo.FindByNumber(ctx, scope.RaffleID, number)
	if err != nil {
		return nil, apperrors.NewUpstreamError("ticket lookup", err)
	}
	if t == nil || t.Status == models.StatusAvailable || t.ReservationExpired(s.clock.Now()) {
		return []string{number}, nil
	}
	if t.Status == models.StatusSold {
		return nil, apperrors.NewAvailabilityConflictError([]string{number})
	}

	// Reserved: substitute the participant's full set of live holds, so
	// a buyer pays for exactly their own holds, never a subset and never
	// a lapsed one.
	if t.ParticipantID == nil {
		return []string{number}, nil
	}
	numbers, err := s.repo.ReservedNumbersByParticipant(ctx, scope.RaffleID, *t.ParticipantID, s.clock.Now())
	if err != nil {
		return nil, apperrors.NewUpstreamError("reserved set lookup", err)
	}
	sort.Strings(numbers)
	return numbers, nil
}

func (s *inventoryService) SoldCount(ctx context.Context, scope models.Scope) (int, error) {
	seller, err := s.sellerSvc.Resolve(ctx, scope.RaffleID, scope.SellerID)
	if err != nil {
		return 0, err
	}

	key := cache.SoldCountKey(scope.RaffleID, seller.ID)
	var count int
	if err := s.cache.Get(ctx, key, &count); err == nil {
		return count, nil
	}

	count, err = s.repo.SoldCount(ctx, scope.RaffleID, seller.ID)
	if err != nil {
		return 0, apperrors.NewUpstreamError("sold count", err)
	}
	if err := s.cache.Set(ctx, key, count, soldCountCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Sold-count cache write failed")
	}
	return count, nil
}

// snapshotIndex returns a point-in-time ticket lookup for the raffle.
// Read errors degrade to an empty map; every suspect number is
// re-confirmed against the store individually anyway.
func (s *inventoryService) snapshotIndex(ctx context.Context, scope models.Scope) map[string]*models.Ticket {
	index := make(map[string]*models.Ticket)
	tickets, err := s.repo.ListByRaffle(ctx, scope.RaffleID)
	if err != nil {
		return index
	}
	for i := range tickets {
		index[tickets[i].Number] = &tickets[i]
	}
	return index
}

func (s *inventoryService) invalidate(ctx context.Context, raffleID, sellerID string) {
	if err := s.cache.InvalidateBoard(ctx, raffleID, sellerID); err != nil {
		s.logger.Warn().Err(err).Msg("Board cache invalidation failed")
	}
}

func (s *inventoryService) invalidateRaffle(ctx context.Context, raffleID string) {
	if err := s.cache.InvalidateRaffle(ctx, raffleID); err != nil {
		s.logger.Warn().Err(err).Msg("Raffle cache invalidation failed")
	}
}

// sellableTo reports whether the ticket can move to sold for the given
// participant (empty participantID = direct purchase).
func sellableTo(t *models.Ticket, participantID string, now time.Time) bool {
	switch t.Status {
	case models.StatusAvailable:
		return true
	case models.StatusReserved:
		if t.ReservationExpired(now) {
			return true
		}
		return participantID != "" && t.ParticipantID != nil && *t.ParticipantID == participantID
	default:
		return false
	}
}

func buildBoard(tickets []models.Ticket, now time.Time) []models.BoardEntry {
	index := make(map[string]*models.Ticket, len(tickets))
	for i := range tickets {
		index[tickets[i].Number] = &tickets[i]
	}

	entries := make([]models.BoardEntry, 0, models.BoardSize)
	for i := 0; i < models.BoardSize; i++ {
		number := formatNumber(i)
		entry := models.BoardEntry{Number: number, Status: models.StatusAvailable, Selectable: true}

		if t, ok := index[number]; ok {
			switch {
			case t.Status == models.StatusSold:
				entry.Status = models.StatusSold
				entry.Selectable = false
			case t.Status == models.StatusReserved && !t.ReservationExpired(now):
				entry.Status = models.StatusReserved
				entry.Selectable = false
				entry.ParticipantID = t.ParticipantID
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func formatNumber(i int) string {
	return string([]byte{byte('0' + i/10), byte('0' + i%10)})
}

func validateNumbers(numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, apperrors.NewValidationError("numbers", "at least one number is required")
	}

	seen := make(map[string]struct{}, len(numbers))
	unique := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if !models.ValidNumber(n) {
			return nil, apperrors.NewValidationError("numbers", "numbers must be two-digit strings 00-99")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique, nil
}

func validateBuyer(buyer models.BuyerInfo) error {
	if buyer.Name == "" {
		return apperrors.NewValidationError("name", "cannot be empty")
	}
	if buyer.Phone == "" {
		return apperrors.NewValidationError("phone", "cannot be empty")
	}
	if buyer.Cedula != "" && len(buyer.Cedula) < MinCedulaLength {
		return apperrors.NewValidationError("cedula", "must be at least 5 characters")
	}
	return nil
}
