// Package migrations applies the database schema in order. Statements are
// idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		max_supply BIGINT NOT NULL,
		total_minted BIGINT NOT NULL DEFAULT 0,
		price_per_mint BIGINT NOT NULL,
		authorized_principal TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (total_minted >= 0 AND total_minted <= max_supply)
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		collection_id TEXT NOT NULL REFERENCES collections(id),
		token_id BIGINT NOT NULL,
		owner TEXT NOT NULL,
		parent_id BIGINT NOT NULL,
		minted_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (collection_id, token_id)
	)`,
	`CREATE TABLE IF NOT EXISTS treasury_balances (
		collection_id TEXT PRIMARY KEY REFERENCES collections(id),
		proceeds BIGINT NOT NULL DEFAULT 0,
		total_deposited BIGINT NOT NULL DEFAULT 0,
		total_withdrawn BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (proceeds >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS treasury_entries (
		id TEXT PRIMARY KEY,
		collection_id TEXT NOT NULL REFERENCES collections(id),
		entry_type TEXT NOT NULL,
		amount BIGINT NOT NULL,
		recipient TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tokens_owner ON tokens (owner)`,
	`CREATE INDEX IF NOT EXISTS idx_treasury_entries_collection ON treasury_entries (collection_id, created_at)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
