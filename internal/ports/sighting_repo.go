package ports

import (
	"context"

	"github.com/Vovarama1992/sightings/internal/models"
)

type SightingRepository interface {
	Insert(ctx context.Context, s *models.Sighting) (*models.Sighting, error)
	List(ctx context.Context) ([]models.SightingListItem, error)
	Ping(ctx context.Context) error
}
