package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"playlist-player/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	StoreError string `json:"storeError,omitempty"`

	// Playlist summary
	Entries     int    `json:"entries"`
	ActiveIndex int    `json:"activeIndex"`
	ActiveID    string `json:"activeId,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ready := h.ready.Load()
	snap := h.player.Snapshot("")

	response := HealthResponse{
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Entries:      snap.Total,
		ActiveIndex:  snap.Active.ActiveIndex,
		ActiveID:     snap.Active.ActiveID,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.store.HealthCheck(ctx); err != nil {
			response.StoreError = err.Error()
			response.Status = statusDegraded
		}
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if not ready at all
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.ready.Load() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, startup.GetBuildInfo())
}
