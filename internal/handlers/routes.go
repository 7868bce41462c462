package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playlist-player/internal/middleware"
)

// Router registers every route. Request metrics are recorded inside the
// router so they can be labelled by route template. A non-empty staticDir
// is served at the root.
func (h *Handlers) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(mux.MiddlewareFunc(middleware.Metrics(middleware.DefaultMetricsConfig())))

	// Health and version
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes share the root router so a path registered for other
	// methods answers 405 instead of 404.

	// Playlist
	r.HandleFunc("/api/playlist", h.GetPlaylist).Methods("GET")
	r.HandleFunc("/api/playlist", h.ClearPlaylist).Methods("DELETE")
	r.HandleFunc("/api/playlist/export", h.ExportPlaylist).Methods("GET")
	r.HandleFunc("/api/playlist/sort", h.SortPlaylist).Methods("POST")
	r.HandleFunc("/api/playlist/shuffle", h.ShufflePlaylist).Methods("POST")
	r.HandleFunc("/api/playlist/{id}", h.RemoveEntry).Methods("DELETE")
	r.HandleFunc("/api/playlist/{id}/load", h.LoadEntry).Methods("POST")

	// Session and stats
	r.HandleFunc("/api/session/ended", h.SessionEnded).Methods("POST")
	r.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Uploads and media
	r.HandleFunc("/api/upload", h.Upload).Methods("POST")
	r.HandleFunc("/api/media/{id}/stream", h.StreamMedia).Methods("GET", "HEAD")
	r.HandleFunc("/api/media/{id}/thumbnail", h.GetThumbnail).Methods("GET")

	// Playback surface
	if h.surface != nil {
		r.Handle("/ws", h.surface).Methods("GET")
	}

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir))).Methods("GET", "HEAD")
	}

	return r
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// MetricsHandler returns the Prometheus metrics handler
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
