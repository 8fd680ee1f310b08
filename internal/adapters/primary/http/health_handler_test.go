package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct{ err error }

func (s stubChecker) Ping(ctx context.Context) error { return s.err }

type stubCounter struct{ n int }

func (s stubCounter) Len() int { return s.n }

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(stubChecker{}, stubCounter{n: 3}, "1.2.3")

	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 3, resp.Sessions)
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		h := NewHealthHandler(stubChecker{}, stubCounter{}, "1.2.3")

		rec := httptest.NewRecorder()
		h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Checks["store"].Status)
		assert.Equal(t, "1.2.3", resp.Version)
	})

	t.Run("unhealthy store", func(t *testing.T) {
		h := NewHealthHandler(stubChecker{err: errors.New("store down")}, stubCounter{}, "1.2.3")

		rec := httptest.NewRecorder()
		h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "store down", resp.Checks["store"].Message)
	})
}
