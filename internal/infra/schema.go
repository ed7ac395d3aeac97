package infra

import (
	"context"
	"fmt"
)

const createSightingsTable = `
	CREATE TABLE IF NOT EXISTS sightings (
		id         SERIAL PRIMARY KEY,
		animal     VARCHAR(100) NOT NULL,
		date_time  TIMESTAMP NOT NULL,
		location   TEXT NOT NULL,
		notes      TEXT,
		photo_url  TEXT,
		audio_url  TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

const createSightingsIndex = `
	CREATE INDEX IF NOT EXISTS idx_sightings_created_at
		ON sightings (created_at DESC, id DESC)
`

// EnsureSchema creates the sightings table and its listing index if absent.
// Safe to run on every start.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createSightingsTable); err != nil {
		return fmt.Errorf("create sightings table: %w", err)
	}
	if _, err := db.Exec(ctx, createSightingsIndex); err != nil {
		return fmt.Errorf("create sightings index: %w", err)
	}
	return nil
}
