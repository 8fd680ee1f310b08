package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of live real-time sessions.
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store     HealthChecker
	sessions  SessionCounter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store HealthChecker, sessions SessionCounter, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Sessions  int              `json:"sessions"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HandleLiveness handles liveness probe requests (is the service running?)
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sessions:  h.sessions.Len(),
	})
}

// HandleReadiness handles readiness probe requests (can the service accept traffic?)
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	status := "healthy"
	code := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = Check{Status: "unhealthy", Message: err.Error()}
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		checks["store"] = Check{Status: "healthy"}
	}

	writeHealth(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Sessions:  h.sessions.Len(),
		Checks:    checks,
	})
}

// HandleHealth is the combined health endpoint.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReadiness(w, r)
}

func writeHealth(w http.ResponseWriter, code int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
