package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on startup. Statements are idempotent so repeated
// boots against the same database are safe.
const schema = `
CREATE TABLE IF NOT EXISTS raffles (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	draw_date  TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sellers (
	id          UUID PRIMARY KEY,
	raffle_id   UUID NOT NULL REFERENCES raffles(id),
	code        TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	max_allowed INT  NOT NULL DEFAULT 100,
	hold_days   INT  NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (raffle_id, code)
);

CREATE TABLE IF NOT EXISTS participants (
	id                 UUID PRIMARY KEY,
	raffle_id          UUID NOT NULL REFERENCES raffles(id),
	phone              TEXT NOT NULL,
	name               TEXT NOT NULL,
	cedula             TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	address            TEXT NOT NULL DEFAULT '',
	product_suggestion TEXT NOT NULL DEFAULT '',
	note               TEXT NOT NULL DEFAULT '',
	seller_id          UUID REFERENCES sellers(id),
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (raffle_id, phone)
);

CREATE TABLE IF NOT EXISTS tickets (
	raffle_id              UUID NOT NULL REFERENCES raffles(id),
	number                 CHAR(2) NOT NULL,
	seller_id              UUID REFERENCES sellers(id),
	status                 TEXT NOT NULL DEFAULT 'available',
	participant_id         UUID REFERENCES participants(id),
	participant_name       TEXT NOT NULL DEFAULT '',
	participant_phone      TEXT NOT NULL DEFAULT '',
	participant_cedula     TEXT NOT NULL DEFAULT '',
	reservation_expires_at TIMESTAMPTZ,
	payment_approved       BOOLEAN NOT NULL DEFAULT FALSE,
	payment_proof_ref      TEXT,
	payment_method         TEXT NOT NULL DEFAULT '',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (raffle_id, number),
	CHECK (status IN ('available', 'reserved', 'sold'))
);

CREATE INDEX IF NOT EXISTS idx_tickets_expiry
	ON tickets (reservation_expires_at) WHERE status = 'reserved';

CREATE TABLE IF NOT EXISTS fraud_reports (
	id             UUID PRIMARY KEY,
	participant_id UUID NOT NULL REFERENCES participants(id),
	raffle_id      UUID NOT NULL REFERENCES raffles(id),
	seller_id      UUID NOT NULL REFERENCES sellers(id),
	message        TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_fraud_reports_pending
	ON fraud_reports (participant_id, raffle_id, seller_id)
	WHERE status = 'pending';
`

// Migrate applies the embedded schema.
func (c *Client) Migrate(ctx context.Context) error {
	return ApplySchema(ctx, c.db)
}

// ApplySchema runs the embedded DDL against an existing handle.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
