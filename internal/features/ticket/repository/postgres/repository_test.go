package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/features/ticket/repository"
	platformpostgres "raffle-tool-backend/internal/platform/postgres"
)

// These tests run the real SQL against a live database and are skipped
// when none is reachable.

const defaultTestDSN = "host=localhost port=5432 user=raffle password=raffle dbname=raffle_test sslmode=disable"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping postgres integration tests: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, platformpostgres.ApplySchema(ctx, db))
	return db
}

func truncateAll(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE fraud_reports, tickets, participants, sellers, raffles CASCADE`)
	require.NoError(t, err)
}

type fixture struct {
	raffleID string
	sellerID string
	buyerA   string
	buyerB   string
}

func seed(t *testing.T, db *sql.DB, maxAllowed int) fixture {
	t.Helper()
	fx := fixture{
		raffleID: uuid.New().String(),
		sellerID: uuid.New().String(),
		buyerA:   uuid.New().String(),
		buyerB:   uuid.New().String(),
	}

	_, err := db.Exec(`INSERT INTO raffles (id, name) VALUES ($1, 'Rifa')`, fx.raffleID)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO sellers (id, raffle_id, code, max_allowed) VALUES ($1, $2, '1712345678', $3)`,
		fx.sellerID, fx.raffleID, maxAllowed)
	require.NoError(t, err)

	for i, id := range []string{fx.buyerA, fx.buyerB} {
		_, err = db.Exec(
			`INSERT INTO participants (id, raffle_id, phone, name) VALUES ($1, $2, $3, 'Buyer')`,
			id, fx.raffleID, "+59399111111"+string(rune('0'+i)))
		require.NoError(t, err)
	}
	return fx
}

func sellBatch(fx fixture, participantID string, numbers ...string) repository.SellBatch {
	return repository.SellBatch{
		RaffleID:      fx.raffleID,
		SellerID:      fx.sellerID,
		Numbers:       numbers,
		ParticipantID: participantID,
		PaymentMethod: "cash",
		Now:           time.Now().UTC(),
		MaxAllowed:    100,
	}
}

func ticketState(t *testing.T, db *sql.DB, fx fixture, number string) (status, participantID string) {
	t.Helper()
	var pid sql.NullString
	err := db.QueryRow(
		`SELECT status, participant_id FROM tickets WHERE raffle_id = $1 AND number = $2`,
		fx.raffleID, number,
	).Scan(&status, &pid)
	require.NoError(t, err)
	return status, pid.String
}

// Two concurrent sales of the same unseeded number: exactly one caller
// may win, the other must get the number back as a conflict. The loser
// used to clobber the winner's committed row when the sold-transition
// upsert carried no state guard.
func TestSellAllConcurrentUnseededNumber(t *testing.T) {
	db := newTestDB(t)
	truncateAll(t, db)
	fx := seed(t, db, 100)
	repo := NewPostgresRepository(db)

	type outcome struct {
		conflicts []string
		err       error
	}
	results := make([]outcome, 2)
	buyers := []string{fx.buyerA, fx.buyerB}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conflicts, err := repo.SellAll(context.Background(), sellBatch(fx, buyers[i], "07"))
			results[i] = outcome{conflicts: conflicts, err: err}
		}(i)
	}
	wg.Wait()

	var winners []string
	for i, r := range results {
		require.NoError(t, r.err)
		if len(r.conflicts) == 0 {
			winners = append(winners, buyers[i])
		} else {
			assert.Equal(t, []string{"07"}, r.conflicts)
		}
	}
	require.Len(t, winners, 1, "exactly one concurrent sale may succeed")

	status, pid := ticketState(t, db, fx, "07")
	assert.Equal(t, "sold", status)
	assert.Equal(t, winners[0], pid, "the committed sale keeps its owner")
}

// A committed sale is final: a later sale attempt conflicts and leaves
// the row untouched.
func TestSellAllNeverRevertsSoldRow(t *testing.T) {
	db := newTestDB(t)
	truncateAll(t, db)
	fx := seed(t, db, 100)
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	conflicts, err := repo.SellAll(ctx, sellBatch(fx, fx.buyerA, "07"))
	require.NoError(t, err)
	require.Empty(t, conflicts)

	conflicts, err = repo.SellAll(ctx, sellBatch(fx, fx.buyerB, "07"))
	require.NoError(t, err)
	assert.Equal(t, []string{"07"}, conflicts)

	status, pid := ticketState(t, db, fx, "07")
	assert.Equal(t, "sold", status)
	assert.Equal(t, fx.buyerA, pid)
}

// A live reservation sells only to its own participant; a lapsed one
// sells to anyone.
func TestSellAllReservationOwnership(t *testing.T) {
	db := newTestDB(t)
	truncateAll(t, db)
	fx := seed(t, db, 100)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	conflicts, err := repo.ReserveAll(ctx, repository.ReserveBatch{
		RaffleID:      fx.raffleID,
		SellerID:      fx.sellerID,
		Numbers:       []string{"03"},
		ParticipantID: fx.buyerA,
		ExpiresAt:     now.Add(48 * time.Hour),
		Now:           now,
		MaxAllowed:    100,
	})
	require.NoError(t, err)
	require.Empty(t, conflicts)

	conflicts, err = repo.SellAll(ctx, sellBatch(fx, fx.buyerB, "03"))
	require.NoError(t, err)
	assert.Equal(t, []string{"03"}, conflicts, "someone else's live hold is not sellable")

	conflicts, err = repo.SellAll(ctx, sellBatch(fx, fx.buyerA, "03"))
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	status, pid := ticketState(t, db, fx, "03")
	assert.Equal(t, "sold", status)
	assert.Equal(t, fx.buyerA, pid)
}

// A batch with one conflicting number applies nothing.
func TestReserveAllBatchIsAtomic(t *testing.T) {
	db := newTestDB(t)
	truncateAll(t, db)
	fx := seed(t, db, 100)
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	conflicts, err := repo.ReserveAll(ctx, repository.ReserveBatch{
		RaffleID:      fx.raffleID,
		SellerID:      fx.sellerID,
		Numbers:       []string{"13"},
		ParticipantID: fx.buyerA,
		ExpiresAt:     now.Add(48 * time.Hour),
		Now:           now,
		MaxAllowed:    100,
	})
	require.NoError(t, err)
	require.Empty(t, conflicts)

	conflicts, err = repo.ReserveAll(ctx, repository.ReserveBatch{
		RaffleID:      fx.raffleID,
		SellerID:      fx.sellerID,
		Numbers:       []string{"07", "13"},
		ParticipantID: fx.buyerB,
		ExpiresAt:     now.Add(48 * time.Hour),
		Now:           now,
		MaxAllowed:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"13"}, conflicts)

	clean, err := repo.FindByNumber(ctx, fx.raffleID, "07")
	require.NoError(t, err)
	assert.Nil(t, clean, "the clean number must not be written when the batch fails")
}

// The in-transaction quota re-check is serialized on the seller row, so
// concurrent batches cannot both squeeze past the limit.
func TestSellAllQuotaAuthoritative(t *testing.T) {
	db := newTestDB(t)
	truncateAll(t, db)
	fx := seed(t, db, 1)
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	batch := sellBatch(fx, fx.buyerA, "01")
	batch.MaxAllowed = 1
	conflicts, err := repo.SellAll(ctx, batch)
	require.NoError(t, err)
	require.Empty(t, conflicts)

	batch = sellBatch(fx, fx.buyerB, "02")
	batch.MaxAllowed = 1
	_, err = repo.SellAll(ctx, batch)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQuotaExceeded))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM tickets WHERE raffle_id = $1 AND status = 'sold'`, fx.raffleID,
	).Scan(&count))
	assert.Equal(t, 1, count)
}
