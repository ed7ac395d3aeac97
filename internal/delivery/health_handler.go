package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/ports"
)

// isoMillis mirrors the ISO-8601 form clients already parse.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

const (
	msgHealthy   = "API is running and database is connected"
	msgUnhealthy = "Database connection failed"
)

type HealthHandler struct {
	sightings ports.SightingService
	log       *logger.ZapLogger
	now       func() time.Time
}

func NewHealthHandler(sightings ports.SightingService, log *logger.ZapLogger) *HealthHandler {
	return &HealthHandler{sightings: sightings, log: log, now: time.Now}
}

// GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.sightings.Health(r.Context()); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "health check failed",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, msgUnhealthy)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Message:   msgHealthy,
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}
