package ports

import (
	"context"

	"github.com/Vovarama1992/sightings/internal/models"
)

// CreateSightingInput is the request body of POST /api/sightings.
// DateTime is accepted for compatibility and ignored.
type CreateSightingInput struct {
	Animal   string  `json:"animal"`
	DateTime *string `json:"dateTime,omitempty"`
	Location string  `json:"location"`
	Notes    *string `json:"notes,omitempty"`
}

type SightingEvent struct {
	Sighting models.Sighting
}

type SightingService interface {
	Create(ctx context.Context, in CreateSightingInput) (*models.Sighting, error)
	List(ctx context.Context) ([]models.SightingListItem, error)
	Health(ctx context.Context) error
	Events() <-chan SightingEvent
}
