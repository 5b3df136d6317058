package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables the service needs if they do not exist yet.
// It is idempotent and safe to run on every startup.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS clubs (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            budget NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (budget >= 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS players (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            market_value NUMERIC(18,2) NOT NULL DEFAULT 0,
            current_club_id UUID REFERENCES clubs(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS transfers (
            id UUID PRIMARY KEY,
            player_id UUID NOT NULL REFERENCES players(id),
            from_club_id UUID NOT NULL REFERENCES clubs(id),
            to_club_id UUID NOT NULL REFERENCES clubs(id),
            status TEXT NOT NULL,
            previous_status TEXT,
            clauses JSONB NOT NULL DEFAULT '[]',
            computed_fee NUMERIC(18,2),
            initiation_timestamp TIMESTAMPTZ NOT NULL,
            last_transition_timestamp TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_transfers_player_status ON transfers (player_id, status);
        CREATE INDEX IF NOT EXISTS idx_transfers_initiation ON transfers (initiation_timestamp DESC);
    `)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
