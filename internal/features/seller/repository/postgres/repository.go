package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"raffle-tool-backend/internal/features/seller/models"
	"raffle-tool-backend/internal/features/seller/repository"
)

type postgresSellerRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.SellerRepository {
	return &postgresSellerRepository{db: db}
}

const sellerColumns = "id, raffle_id, code, name, max_allowed, hold_days, created_at"

func (r *postgresSellerRepository) GetByID(ctx context.Context, raffleID, sellerID string) (*models.Seller, error) {
	query := fmt.Sprintf("SELECT %s FROM sellers WHERE raffle_id = $1 AND id = $2", sellerColumns)
	return r.scanSeller(r.db.QueryRowContext(ctx, query, raffleID, sellerID))
}

func (r *postgresSellerRepository) GetByCode(ctx context.Context, raffleID, code string) (*models.Seller, error) {
	query := fmt.Sprintf("SELECT %s FROM sellers WHERE raffle_id = $1 AND code = $2", sellerColumns)
	return r.scanSeller(r.db.QueryRowContext(ctx, query, raffleID, code))
}

func (r *postgresSellerRepository) scanSeller(row *sql.Row) (*models.Seller, error) {
	var s models.Seller
	err := row.Scan(&s.ID, &s.RaffleID, &s.Code, &s.Name, &s.MaxAllowed, &s.HoldDays, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &s, nil
}

func (r *postgresSellerRepository) GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error) {
	query := "SELECT id, name, draw_date, created_at FROM raffles WHERE id = $1"

	var raffle models.Raffle
	var drawDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, raffleID).
		Scan(&raffle.ID, &raffle.Name, &drawDate, &raffle.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if drawDate.Valid {
		raffle.DrawDate = &drawDate.Time
	}
	return &raffle, nil
}
