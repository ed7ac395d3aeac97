package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hSightings *SightingHandler, hHealth *HealthHandler, feed http.HandlerFunc) {

	r.Route("/api", func(r chi.Router) {
		r.Post("/sightings", hSightings.Create)
		r.Get("/sightings", hSightings.List)
		r.Get("/health", hHealth.Check)
	})

	// live feed of new sightings
	r.Get("/ws/sightings", feed)
}
