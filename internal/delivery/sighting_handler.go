package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/domain"
	"github.com/Vovarama1992/sightings/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const maxBodyBytes = 1 << 20

const (
	msgCreated      = "Sighting reported successfully"
	msgCreateFailed = "Failed to submit sighting"
	msgListFailed   = "Failed to fetch sightings"
	msgInvalidJSON  = "Invalid JSON body"
)

type SightingHandler struct {
	sightings ports.SightingService
	log       *logger.ZapLogger
	created   prometheus.Counter
}

// NewSightingHandler wires the sighting endpoints. created may be nil.
func NewSightingHandler(sightings ports.SightingService, log *logger.ZapLogger, created prometheus.Counter) *SightingHandler {
	return &SightingHandler{
		sightings: sightings,
		log:       log,
		created:   created,
	}
}

// POST /api/sightings
func (h *SightingHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ports.CreateSightingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "create sighting: bad request body",
			Error:   err,
		})
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	s, err := h.sightings.Create(r.Context(), req)
	if err != nil {
		var invalid *domain.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "error submitting sighting",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	if h.created != nil {
		h.created.Inc()
	}
	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "sighting reported",
		Fields: map[string]any{
			"id":     s.ID,
			"animal": s.Animal,
		},
	})

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data:    s,
		Message: msgCreated,
	})
}

// GET /api/sightings
func (h *SightingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sightings.List(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "error fetching sightings",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, msgListFailed)
		return
	}

	data := any(items)
	if items == nil {
		data = []struct{}{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}
