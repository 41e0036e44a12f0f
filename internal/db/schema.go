package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationsSchema = `
CREATE TABLE IF NOT EXISTS player_registrations (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	full_name    TEXT NOT NULL,
	dob          TEXT,
	position     TEXT NOT NULL,
	phone        TEXT NOT NULL,
	current_team TEXT NOT NULL,
	photo_url    TEXT,
	video_url    TEXT,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	expires_at   TEXT
)`

// EnsureSchema creates the registrations table if it is missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, registrationsSchema)

	return err
}
