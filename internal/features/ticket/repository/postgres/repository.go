package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/features/ticket/models"
	"raffle-tool-backend/internal/features/ticket/repository"
)

type postgresTicketRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.TicketRepository {
	return &postgresTicketRepository{db: db}
}

const ticketColumns = `raffle_id, number, COALESCE(seller_id::text, ''), status,
	participant_id, participant_name, participant_phone, participant_cedula,
	reservation_expires_at, payment_approved, payment_proof_ref, payment_method,
	created_at, updated_at`

func (r *postgresTicketRepository) ListByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM tickets WHERE raffle_id = $1 ORDER BY number", ticketColumns)

	rows, err := r.db.QueryContext(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *postgresTicketRepository) FindByNumber(ctx context.Context, raffleID, number string) (*models.Ticket, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM tickets WHERE raffle_id = $1 AND number = $2", ticketColumns)

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, raffleID, number))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return t, nil
}

func (r *postgresTicketRepository) ReservedNumbersByParticipant(ctx context.Context, raffleID, participantID string, now time.Time) ([]string, error) {
	query := `
		SELECT number FROM tickets
		WHERE raffle_id = $1 AND participant_id = $2 AND status = 'reserved'
		  AND (reservation_expires_at IS NULL OR reservation_expires_at >= $3)
		ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, raffleID, participantID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list reserved numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *postgresTicketRepository) SoldCount(ctx context.Context, raffleID, sellerID string) (int, error) {
	query := "SELECT COUNT(*) FROM tickets WHERE raffle_id = $1 AND seller_id = $2 AND status = 'sold'"

	var count int
	if err := r.db.QueryRowContext(ctx, query, raffleID, sellerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	return count, nil
}

// ReserveAll claims every number in one transaction. A number is
// claimable when no row exists yet, the row is available, or its
// reservation has lapsed. Any other state is a conflict and the whole
// batch rolls back, so partial application is never observable.
func (r *postgresTicketRepository) ReserveAll(ctx context.Context, batch repository.ReserveBatch) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reservation: %w", err)
	}
	defer tx.Rollback()

	if err := checkQuotaLocked(ctx, tx, batch.RaffleID, batch.SellerID, len(batch.Numbers), batch.MaxAllowed); err != nil {
		return nil, err
	}

	claim := `
		INSERT INTO tickets (raffle_id, number, seller_id, status, participant_id,
			participant_name, participant_phone, participant_cedula, reservation_expires_at)
		VALUES ($1, $2, $3, 'reserved', $4, $5, $6, $7, $8)
		ON CONFLICT (raffle_id, number) DO UPDATE SET
			seller_id              = EXCLUDED.seller_id,
			status                 = 'reserved',
			participant_id         = EXCLUDED.participant_id,
			participant_name       = EXCLUDED.participant_name,
			participant_phone      = EXCLUDED.participant_phone,
			participant_cedula     = EXCLUDED.participant_cedula,
			reservation_expires_at = EXCLUDED.reservation_expires_at,
			payment_approved       = FALSE,
			payment_proof_ref      = NULL,
			payment_method         = '',
			updated_at             = NOW()
		WHERE tickets.status = 'available'
		   OR (tickets.status = 'reserved' AND tickets.reservation_expires_at < $9)`

	var conflicts []string
	for _, number := range batch.Numbers {
		res, err := tx.ExecContext(ctx, claim,
			batch.RaffleID, number, batch.SellerID, batch.ParticipantID,
			batch.ParticipantName, batch.ParticipantPhone, batch.ParticipantCedula,
			batch.ExpiresAt, batch.Now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve number %s: %w", number, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to reserve number %s: %w", number, err)
		}
		if affected == 0 {
			conflicts = append(conflicts, number)
		}
	}

	if len(conflicts) > 0 {
		return conflicts, nil // rollback via defer
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil, nil
}

// SellAll transitions every number to sold in one transaction, with the
// same conditional-upsert contract as ReserveAll: the DO UPDATE only
// fires when the committed row is still compatible with the claimed
// flow (available, lapsed-reserved, or reserved by this participant),
// so a concurrent insert that commits first turns this write into a
// zero-row conflict instead of clobbering the winner. payment_approved
// is always written false - approval is a separate manual review step.
func (r *postgresTicketRepository) SellAll(ctx context.Context, batch repository.SellBatch) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale: %w", err)
	}
	defer tx.Rollback()

	if err := checkQuotaLocked(ctx, tx, batch.RaffleID, batch.SellerID, len(batch.Numbers), batch.MaxAllowed); err != nil {
		return nil, err
	}

	claim := `
		INSERT INTO tickets (raffle_id, number, seller_id, status, participant_id,
			participant_name, participant_phone, participant_cedula,
			reservation_expires_at, payment_approved, payment_proof_ref, payment_method)
		VALUES ($1, $2, $3, 'sold', $4, $5, $6, $7, NULL, FALSE, NULLIF($8, ''), $9)
		ON CONFLICT (raffle_id, number) DO UPDATE SET
			seller_id              = EXCLUDED.seller_id,
			status                 = 'sold',
			participant_id         = EXCLUDED.participant_id,
			participant_name       = EXCLUDED.participant_name,
			participant_phone      = EXCLUDED.participant_phone,
			participant_cedula     = EXCLUDED.participant_cedula,
			reservation_expires_at = NULL,
			payment_approved       = FALSE,
			payment_proof_ref      = EXCLUDED.payment_proof_ref,
			payment_method         = EXCLUDED.payment_method,
			updated_at             = NOW()
		WHERE tickets.status = 'available'
		   OR (tickets.status = 'reserved'
		       AND (tickets.participant_id = EXCLUDED.participant_id
		            OR tickets.reservation_expires_at < $10))`

	var conflicts []string
	for _, number := range batch.Numbers {
		res, err := tx.ExecContext(ctx, claim,
			batch.RaffleID, number, batch.SellerID, batch.ParticipantID,
			batch.ParticipantName, batch.ParticipantPhone, batch.ParticipantCedula,
			batch.PaymentProofRef, batch.PaymentMethod, batch.Now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to sell number %s: %w", number, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to sell number %s: %w", number, err)
		}
		if affected == 0 {
			conflicts = append(conflicts, number)
		}
	}

	if len(conflicts) > 0 {
		return conflicts, nil // rollback via defer
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return nil, nil
}

// checkQuotaLocked is the authoritative quota re-check, serialized on
// the seller row so concurrent batches cannot both pass at the limit.
func checkQuotaLocked(ctx context.Context, tx *sql.Tx, raffleID, sellerID string, additional, maxAllowed int) error {
	var locked string
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM sellers WHERE id = $1 FOR UPDATE", sellerID,
	).Scan(&locked); err != nil {
		return fmt.Errorf("failed to lock seller %s: %w", sellerID, err)
	}

	var sold int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE raffle_id = $1 AND seller_id = $2 AND status = 'sold'",
		raffleID, sellerID,
	).Scan(&sold); err != nil {
		return fmt.Errorf("failed to count sold tickets: %w", err)
	}

	if sold+additional > maxAllowed {
		return apperrors.NewQuotaExceededError(sellerID, sold, additional, maxAllowed)
	}
	return nil
}

func (r *postgresTicketRepository) DemoteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE tickets SET
			status                 = 'available',
			seller_id              = NULL,
			participant_id         = NULL,
			participant_name       = '',
			participant_phone      = '',
			participant_cedula     = '',
			reservation_expires_at = NULL,
			updated_at             = NOW()
		WHERE status = 'reserved' AND reservation_expires_at < $1
		RETURNING raffle_id`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to demote expired reservations: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var raffleIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan raffle id: %w", err)
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			raffleIDs = append(raffleIDs, id)
		}
	}
	return raffleIDs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	var t models.Ticket
	var participantID sql.NullString
	var expiresAt sql.NullTime
	var proofRef sql.NullString

	err := row.Scan(
		&t.RaffleID, &t.Number, &t.SellerID, &t.Status,
		&participantID, &t.ParticipantName, &t.ParticipantPhone, &t.ParticipantCedula,
		&expiresAt, &t.PaymentApproved, &proofRef, &t.PaymentMethod,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if participantID.Valid {
		t.ParticipantID = &participantID.String
	}
	if expiresAt.Valid {
		t.ReservationExpiresAt = &expiresAt.Time
	}
	if proofRef.Valid {
		t.PaymentProofRef = &proofRef.String
	}
	return &t, nil
}
