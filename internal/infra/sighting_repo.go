package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/sightings/internal/models"
	"github.com/Vovarama1992/sightings/internal/ports"
	"github.com/jackc/pgx/v5"
)

type PostgresSightingRepo struct {
	db      DB
	timeout time.Duration
}

// NewPostgresSightingRepo returns a repository over db. A positive timeout
// bounds each statement, including the wait for a free pool connection.
func NewPostgresSightingRepo(db DB, timeout time.Duration) ports.SightingRepository {
	return &PostgresSightingRepo{db: db, timeout: timeout}
}

func (r *PostgresSightingRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresSightingRepo) Insert(ctx context.Context, s *models.Sighting) (*models.Sighting, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO sightings (animal, date_time, location, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, animal, date_time, location, COALESCE(notes, '') AS notes,
		          photo_url, audio_url, created_at
	`
	rows, err := r.db.Query(ctx, query, s.Animal, s.DateTime, s.Location, s.Notes)
	if err != nil {
		return nil, fmt.Errorf("insert sighting: %w", err)
	}

	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Sighting])
	if err != nil {
		return nil, fmt.Errorf("insert sighting: %w", err)
	}
	return &out, nil
}

func (r *PostgresSightingRepo) List(ctx context.Context) ([]models.SightingListItem, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT
			id,
			animal,
			TO_CHAR(date_time, 'Month DD, YYYY, HH12:MI AM') AS date_time,
			location,
			COALESCE(notes, '') AS notes,
			photo_url,
			audio_url,
			created_at
		FROM sightings
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.SightingListItem])
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	if items == nil {
		items = []models.SightingListItem{}
	}
	return items, nil
}

func (r *PostgresSightingRepo) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
