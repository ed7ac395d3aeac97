package ws

import (
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Forward pushes stored sightings to feed subscribers until events is closed.
// delivered counts accepted writes and may be nil.
func Forward(events <-chan ports.SightingEvent, hub *Hub, delivered prometheus.Counter, log *logger.ZapLogger) {
	for ev := range events {
		payload, err := EncodeSighting(ev.Sighting)
		if err != nil {
			log.Log(logger.LogEntry{
				Level:   "error",
				Message: "feed marshal failed",
				Fields:  map[string]any{"id": ev.Sighting.ID},
				Error:   err,
			})
			continue
		}

		if sent := hub.Broadcast(ev.Sighting.Animal, payload); sent > 0 && delivered != nil {
			delivered.Add(float64(sent))
		}
	}
}
