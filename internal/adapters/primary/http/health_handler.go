package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/lorrc/ticket-board/internal/core/ports"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PersistenceReporter reports whether the ticket store is saving successfully.
type PersistenceReporter interface {
	PersistenceStatus() ports.PersistenceStatus
}

// ConnectionCounter reports live WebSocket connections.
type ConnectionCounter interface {
	Count() int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	storage     HealthChecker
	persistence PersistenceReporter
	connections ConnectionCounter
	startTime   time.Time
	version     string
}

// NewHealthHandler creates a new health handler. connections may be nil.
func NewHealthHandler(
	storage HealthChecker,
	persistence PersistenceReporter,
	connections ConnectionCounter,
	version string,
) *HealthHandler {
	return &HealthHandler{
		storage:     storage,
		persistence: persistence,
		connections: connections,
		startTime:   time.Now(),
		version:     version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HandleLiveness handles liveness probe requests (is the service running?)
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles readiness probe requests (can the service accept traffic?)
// A degraded ticket store still serves requests but reports not ready.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, response)
}

// HandleHealth handles detailed health check requests (for monitoring/debugging)
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)

	overallStatus := "healthy"
	if !healthy {
		overallStatus = "degraded"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := struct {
		HealthResponse
		Memory struct {
			Alloc      uint64 `json:"alloc_bytes"`
			TotalAlloc uint64 `json:"total_alloc_bytes"`
			Sys        uint64 `json:"sys_bytes"`
			NumGC      uint32 `json:"num_gc"`
		} `json:"memory"`
		Goroutines  int `json:"goroutines"`
		Connections int `json:"websocket_connections"`
	}{
		HealthResponse: HealthResponse{
			Status:    overallStatus,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Round(time.Second).String(),
			Checks:    checks,
		},
		Goroutines: runtime.NumGoroutine(),
	}
	response.Memory.Alloc = memStats.Alloc
	response.Memory.TotalAlloc = memStats.TotalAlloc
	response.Memory.Sys = memStats.Sys
	response.Memory.NumGC = memStats.NumGC
	if h.connections != nil {
		response.Connections = h.connections.Count()
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, response)
}

func (h *HealthHandler) runChecks(ctx context.Context) (map[string]Check, bool) {
	checks := map[string]Check{
		"storage":     h.checkStorage(ctx),
		"persistence": h.checkPersistence(),
	}

	for _, check := range checks {
		if check.Status != "healthy" {
			return checks, false
		}
	}
	return checks, true
}

// checkStorage checks that the storage backend is reachable
func (h *HealthHandler) checkStorage(ctx context.Context) Check {
	start := time.Now()

	if h.storage == nil {
		return Check{
			Status:  "unhealthy",
			Message: "Storage not configured",
		}
	}

	err := h.storage.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkPersistence reports whether the last save succeeded
func (h *HealthHandler) checkPersistence() Check {
	if h.persistence == nil {
		return Check{Status: "healthy"}
	}

	status := h.persistence.PersistenceStatus()
	if !status.Available {
		return Check{
			Status:  "unhealthy",
			Message: status.LastError,
		}
	}

	check := Check{Status: "healthy"}
	if status.LastSavedAt != nil {
		check.Message = "last saved " + status.LastSavedAt.UTC().Format(time.RFC3339)
	}
	return check
}
