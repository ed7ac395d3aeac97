package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/domain"
	"github.com/Vovarama1992/sightings/internal/models"
	"github.com/Vovarama1992/sightings/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, in ports.CreateSightingInput) (*models.Sighting, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Sighting), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) List(ctx context.Context) ([]models.SightingListItem, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.SightingListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockService) Events() <-chan ports.SightingEvent {
	return nil
}

type response struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	Timestamp string          `json:"timestamp"`
}

func newTestRouter(svc ports.SightingService, created prometheus.Counter) chi.Router {
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	r := chi.NewRouter()
	RegisterRoutes(r,
		NewSightingHandler(svc, zl, created),
		NewHealthHandler(svc, zl),
		func(w http.ResponseWriter, r *http.Request) {},
	)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec, resp
}

func TestCreateSighting(t *testing.T) {
	now := time.Now().UTC()

	t.Run("created with server time", func(t *testing.T) {
		svc := new(mockService)
		created := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_created_total"})
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in ports.CreateSightingInput) bool {
			return in.Animal == "Deer" && in.Location == "North Field" &&
				in.Notes != nil && *in.Notes == "Grazing at dawn" &&
				in.DateTime != nil && *in.DateTime == "2024-01-01"
		})).Return(&models.Sighting{
			ID: 1, Animal: "Deer", DateTime: now, Location: "North Field", Notes: "Grazing at dawn", CreatedAt: now,
		}, nil).Once()

		rec, resp := do(t, newTestRouter(svc, created), http.MethodPost, "/api/sightings",
			`{"animal":"Deer","dateTime":"2024-01-01","location":"North Field","notes":"Grazing at dawn"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "Sighting reported successfully", resp.Message)

		var data map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "Deer", data["animal"])
		assert.Equal(t, "North Field", data["location"])
		assert.Equal(t, "Grazing at dawn", data["notes"])
		assert.Nil(t, data["photoUrl"])
		assert.Nil(t, data["audioUrl"])

		stamped, err := time.Parse(time.RFC3339Nano, data["dateTime"].(string))
		require.NoError(t, err)
		assert.WithinDuration(t, now, stamped, time.Second)
		assert.NotContains(t, data["dateTime"], "2024-01-01")

		assert.InDelta(t, 1, testutil.ToFloat64(created), 0)
		svc.AssertExpectations(t)
	})

	t.Run("notes omitted", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in ports.CreateSightingInput) bool {
			return in.Notes == nil
		})).Return(&models.Sighting{ID: 2, Animal: "Fox", Location: "Ridge", Notes: ""}, nil).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/sightings",
			`{"animal":"Fox","location":"Ridge"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var data map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "", data["notes"])
	})

	t.Run("validation error is 400", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, &domain.ValidationError{Reason: "location required"}).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/sightings", `{"animal":"Fox"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "location required", resp.Error)
	})

	t.Run("malformed json is 400", func(t *testing.T) {
		svc := new(mockService)

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/sightings", `{"animal":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid JSON body", resp.Error)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is 500 with fixed message", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("insert sighting: connection refused")).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/sightings",
			`{"animal":"Deer","location":"North Field"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Failed to submit sighting", resp.Error)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestListSightings(t *testing.T) {
	t.Run("empty table returns empty array", func(t *testing.T) {
		svc := new(mockService)
		svc.On("List", mock.Anything).Return([]models.SightingListItem{}, nil).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/sightings", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.JSONEq(t, `[]`, string(resp.Data))
	})

	t.Run("nil slice still encodes as array", func(t *testing.T) {
		svc := new(mockService)
		svc.On("List", mock.Anything).Return(nil, nil).Once()

		_, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/sightings", "")
		assert.JSONEq(t, `[]`, string(resp.Data))
	})

	t.Run("rows keep repository order", func(t *testing.T) {
		svc := new(mockService)
		svc.On("List", mock.Anything).Return([]models.SightingListItem{
			{ID: 2, Animal: "Heron", DateTime: "March     14, 2025, 06:30 AM", Location: "Marsh"},
			{ID: 1, Animal: "Deer", DateTime: "March     13, 2025, 05:10 PM", Location: "North Field"},
		}, nil).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/sightings", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var data []map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.Len(t, data, 2)
		assert.EqualValues(t, 2, data[0]["id"])
		assert.EqualValues(t, 1, data[1]["id"])
		assert.Equal(t, "March     14, 2025, 06:30 AM", data[0]["dateTime"])
	})

	t.Run("storage failure is 500", func(t *testing.T) {
		svc := new(mockService)
		svc.On("List", mock.Anything).Return(nil, errors.New("list sightings: timeout")).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/sightings", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Failed to fetch sightings", resp.Error)
	})
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Health", mock.Anything).Return(nil).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "API is running and database is connected", resp.Message)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, resp.Timestamp)
	})

	t.Run("database down", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Health", mock.Anything).Return(errors.New("ping: dial tcp: connection refused")).Once()

		rec, resp := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Database connection failed", resp.Error)
	})
}
