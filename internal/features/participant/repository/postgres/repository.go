package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"raffle-tool-backend/internal/features/participant/models"
	"raffle-tool-backend/internal/features/participant/repository"
)

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, raffle_id, phone, name, cedula, email, address,
	product_suggestion, note, COALESCE(seller_id::text, ''), created_at, updated_at`

func (r *postgresParticipantRepository) FindByPhone(ctx context.Context, raffleID, phone string) (*models.Participant, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participants WHERE raffle_id = $1 AND phone = $2", participantColumns)
	return r.scan(r.db.QueryRowContext(ctx, query, raffleID, phone))
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, raffleID, id string) (*models.Participant, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participants WHERE raffle_id = $1 AND id = $2", participantColumns)
	return r.scan(r.db.QueryRowContext(ctx, query, raffleID, id))
}

// Upsert merges on the (raffle_id, phone) unique constraint. Newly
// supplied non-empty fields win; empty input never clobbers a populated
// column. The original seller of contact is kept.
func (r *postgresParticipantRepository) Upsert(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	query := fmt.Sprintf(`
		INSERT INTO participants
			(id, raffle_id, phone, name, cedula, email, address, product_suggestion, note, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid)
		ON CONFLICT (raffle_id, phone) DO UPDATE SET
			name               = COALESCE(NULLIF(EXCLUDED.name, ''), participants.name),
			cedula             = COALESCE(NULLIF(EXCLUDED.cedula, ''), participants.cedula),
			email              = COALESCE(NULLIF(EXCLUDED.email, ''), participants.email),
			address            = COALESCE(NULLIF(EXCLUDED.address, ''), participants.address),
			product_suggestion = COALESCE(NULLIF(EXCLUDED.product_suggestion, ''), participants.product_suggestion),
			note               = COALESCE(NULLIF(EXCLUDED.note, ''), participants.note),
			updated_at         = NOW()
		RETURNING %s`, participantColumns)

	row := r.db.QueryRowContext(ctx, query,
		p.ID, p.RaffleID, p.Phone, p.Name, p.Cedula, p.Email,
		p.Address, p.ProductSuggestion, p.Note, p.SellerID,
	)

	result, err := r.scan(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}
	return result, nil
}

func (r *postgresParticipantRepository) scan(row *sql.Row) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ID, &p.RaffleID, &p.Phone, &p.Name, &p.Cedula, &p.Email,
		&p.Address, &p.ProductSuggestion, &p.Note, &p.SellerID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	return &p, nil
}
