package database

import (
	"context"
	"fmt"
	"time"
)

// Schema for the two persisted tables: chat identities with their role, and
// the authorization-code inventory. Codes are unique by their normalized
// string; assignment fields are NULL while a code is available.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id BIGINT PRIMARY KEY,
		username    TEXT NOT NULL DEFAULT '',
		first_name  TEXT NOT NULL DEFAULT '',
		first_seen  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		role        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS auth_codes (
		id          BIGSERIAL PRIMARY KEY,
		code        TEXT UNIQUE NOT NULL,
		status      TEXT NOT NULL DEFAULT 'available',
		holder_kind TEXT,
		assigned_to BIGINT,
		assigned_at TIMESTAMPTZ,
		note        TEXT NOT NULL DEFAULT '',
		added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_codes_status ON auth_codes (status, id)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_codes_assigned_to ON auth_codes (assigned_to)`,
}

// Migrate creates the schema if missing and pins the configured root
// identity. The root row is upserted on every start so a stale role column
// can never lock the operator out.
func (db *DB) Migrate(ctx context.Context, rootID int64) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if rootID != 0 {
		_, err := db.ExecContext(ctx, `
			INSERT INTO users (telegram_id, username, first_name, first_seen, role)
			VALUES ($1, '', 'ROOT', $2, 'root')
			ON CONFLICT (telegram_id) DO UPDATE SET role = 'root'
		`, rootID, time.Now())
		if err != nil {
			return fmt.Errorf("pin root user: %w", err)
		}
	}

	return nil
}
