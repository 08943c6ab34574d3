package postgres

import "context"

// schema mirrors the SQLite schema with native NUMERIC money columns.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'other',
    kind TEXT NOT NULL,
    base NUMERIC(14, 4) NOT NULL,
    tax NUMERIC(14, 4) NOT NULL,
    tip NUMERIC(14, 4) NOT NULL,
    total NUMERIC(14, 2) NOT NULL,
    mode TEXT NOT NULL,
    unit TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, user_id)
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    description TEXT NOT NULL,
    amount NUMERIC(14, 4) NOT NULL,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS item_assignments (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    participant TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (item_id, participant)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL,
    amount NUMERIC(14, 2) NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('paid', 'pending')),
    created_at BIGINT NOT NULL,
    paid_at BIGINT,
    UNIQUE (bill_id, participant_id)
);

ALTER TABLE bills ADD COLUMN IF NOT EXISTS category TEXT NOT NULL DEFAULT 'other';

CREATE INDEX IF NOT EXISTS idx_participants_user_id ON participants(user_id);
CREATE INDEX IF NOT EXISTS idx_items_bill_id ON items(bill_id);
CREATE INDEX IF NOT EXISTS idx_payments_bill_id ON payments(bill_id);
CREATE INDEX IF NOT EXISTS idx_payments_participant_id ON payments(participant_id);
`

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}
