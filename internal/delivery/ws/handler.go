package ws

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/models"
)

const EventSightingCreated = "sighting.created"

type Message struct {
	Type string          `json:"type"`
	Data models.Sighting `json:"data"`
}

// EncodeSighting builds the feed payload for a stored sighting.
func EncodeSighting(s models.Sighting) ([]byte, error) {
	return json.Marshal(Message{Type: EventSightingCreated, Data: s})
}

// WSHandler subscribes the client to the live sighting feed. The optional
// ?animal= query narrows the feed to one animal.
func WSHandler(hub *Hub, log *logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := RoomFor(r.URL.Query().Get("animal"))

		// Upgrade writes its own error response on failure.
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "ws upgrade failed",
				Error:   err,
			})
			return
		}

		if !hub.Register(roomID, conn) {
			return
		}
		defer hub.Unregister(roomID, conn)

		// Clients only listen; reading drives control frames and detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
