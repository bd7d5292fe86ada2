package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"raffle-tool-backend/internal/features/payment/models"
	"raffle-tool-backend/internal/features/payment/repository"
)

type postgresFraudReportRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.FraudReportRepository {
	return &postgresFraudReportRepository{db: db}
}

const fraudColumns = "id, participant_id, raffle_id, seller_id, message, status, created_at, updated_at"

// UpsertPending relies on the partial unique index over pending rows:
// a second submission for the same triple updates the pending report's
// message instead of inserting a duplicate. Resolved reports are not
// touched.
func (r *postgresFraudReportRepository) UpsertPending(ctx context.Context, report models.FraudReport) (*models.FraudReport, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO fraud_reports (id, participant_id, raffle_id, seller_id, message, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (participant_id, raffle_id, seller_id) WHERE status = 'pending'
		DO UPDATE SET message = EXCLUDED.message, updated_at = NOW()
		RETURNING %s`, fraudColumns)

	row := r.db.QueryRowContext(ctx, query,
		report.ID, report.ParticipantID, report.RaffleID, report.SellerID, report.Message)
	return scanFraudReport(row)
}

func (r *postgresFraudReportRepository) FindPending(ctx context.Context, participantID, raffleID, sellerID string) (*models.FraudReport, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM fraud_reports
		WHERE participant_id = $1 AND raffle_id = $2 AND seller_id = $3 AND status = 'pending'`,
		fraudColumns)

	report, err := scanFraudReport(r.db.QueryRowContext(ctx, query, participantID, raffleID, sellerID))
	if err != nil {
		return nil, err
	}
	return report, nil
}

func scanFraudReport(row *sql.Row) (*models.FraudReport, error) {
	var f models.FraudReport
	err := row.Scan(&f.ID, &f.ParticipantID, &f.RaffleID, &f.SellerID,
		&f.Message, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fraud report: %w", err)
	}
	return &f, nil
}
