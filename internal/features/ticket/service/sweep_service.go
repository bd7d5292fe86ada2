package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"raffle-tool-backend/internal/common/clock"
	"raffle-tool-backend/internal/features/ticket/repository"
)

// SweepService is the scheduled half of reservation expiry: a ticker
// that returns lapsed holds to the pool even when nobody is reading
// the board.
type SweepService struct {
	ctx      context.Context
	cancel   context.CancelFunc
	repo     repository.TicketRepository
	cache    BoardCache
	clock    clock.Clock
	interval time.Duration
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

func NewSweepService(
	repo repository.TicketRepository,
	cacheSvc BoardCache,
	clk clock.Clock,
	interval time.Duration,
	logger zerolog.Logger,
) *SweepService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SweepService{
		ctx:      ctx,
		cancel:   cancel,
		repo:     repo,
		cache:    cacheSvc,
		clock:    clk,
		interval: interval,
		logger:   logger,
	}
}

func (s *SweepService) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting reservation sweep")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.sweep(); err != nil {
					s.logger.Error().Err(err).Msg("Reservation sweep failed")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *SweepService) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("Reservation sweep stopped")
}

func (s *SweepService) sweep() error {
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	raffleIDs, err := s.repo.DemoteExpired(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if len(raffleIDs) == 0 {
		return nil
	}

	for _, raffleID := range raffleIDs {
		if err := s.cache.InvalidateRaffle(ctx, raffleID); err != nil {
			s.logger.Warn().Err(err).Str("raffle_id", raffleID).Msg("Cache invalidation failed after sweep")
		}
	}

	s.logger.Info().Strs("raffle_ids", raffleIDs).Msg("Expired reservations returned to pool")
	return nil
}
