package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/sightings/internal/models"
	"github.com/Vovarama1992/sightings/internal/ports"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidSighting marks input rejected before it reaches storage.
var ErrInvalidSighting = errors.New("invalid sighting")

// ValidationError carries the client-facing reason and matches ErrInvalidSighting.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return ErrInvalidSighting.Error() + ": " + e.Reason }

func (e *ValidationError) Unwrap() error { return ErrInvalidSighting }

// MaxAnimalLength matches the VARCHAR(100) column.
const MaxAnimalLength = 100

const eventBuffer = 100

type SightingService struct {
	repo   ports.SightingRepository
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	events chan ports.SightingEvent
}

func NewSightingService(repo ports.SightingRepository) *SightingService {
	return &SightingService{
		repo:   repo,
		now:    time.Now,
		events: make(chan ports.SightingEvent, eventBuffer),
	}
}

func (s *SightingService) Events() <-chan ports.SightingEvent { return s.events }

// Create validates the input, stamps the current server time and stores the
// sighting. The client-supplied dateTime is ignored.
func (s *SightingService) Create(ctx context.Context, in ports.CreateSightingInput) (*models.Sighting, error) {
	sighting, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Insert(ctx, sighting)
	if err != nil {
		return nil, err
	}

	s.publish(*saved)
	return saved, nil
}

func (s *SightingService) List(ctx context.Context) ([]models.SightingListItem, error) {
	return s.repo.List(ctx)
}

func (s *SightingService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Close stops event delivery and ends the Events channel. Sightings created
// afterwards are still stored but no longer published. Safe to call twice.
func (s *SightingService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

func (s *SightingService) fromInput(in ports.CreateSightingInput) (*models.Sighting, error) {
	animal := clean(in.Animal)
	location := clean(in.Location)

	var missing []string
	if animal == "" {
		missing = append(missing, "animal")
	}
	if location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: strings.Join(missing, " and ") + " required"}
	}
	if n := utf8.RuneCountInString(animal); n > MaxAnimalLength {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("animal must be at most %d characters, got %d", MaxAnimalLength, n),
		}
	}

	notes := ""
	if in.Notes != nil {
		notes = clean(*in.Notes)
	}

	return &models.Sighting{
		Animal:   animal,
		DateTime: s.now().UTC(),
		Location: location,
		Notes:    notes,
	}, nil
}

// publish never blocks the request; events are dropped when nobody drains them.
func (s *SightingService) publish(saved models.Sighting) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case s.events <- ports.SightingEvent{Sighting: saved}:
	default:
	}
}

func clean(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
