package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_player_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_catalog_entries",
			Help: "Number of entries in the playlist",
		},
	)

	CatalogSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_catalog_size_bytes",
			Help: "Total size of all playlist entries in bytes",
		},
	)

	CatalogDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_catalog_duration_seconds",
			Help: "Total known duration of all playlist entries",
		},
	)

	CatalogMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_catalog_mutations_total",
			Help: "Total number of catalog mutations",
		},
		[]string{"operation", "status"},
	)

	CatalogPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_player_catalog_persist_duration_seconds",
			Help:    "Time spent serializing and saving the catalog",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_player_store_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)
)

// Session metrics
var (
	SessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_session_transitions_total",
			Help: "Total number of playback session transitions",
		},
		[]string{"event", "state"}, // state: "active" or "empty"
	)

	SessionActiveIndex = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_session_active_index",
			Help: "Index of the active entry, -1 when nothing is active",
		},
	)
)

// Thumbnail and background task metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_thumbnail_generations_total",
			Help: "Total number of thumbnail requests by outcome",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_player_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	TasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_tasks_in_flight",
			Help: "Number of background jobs currently running",
		},
	)

	TasksDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_tasks_discarded_total",
			Help: "Background results dropped because their entry no longer exists",
		},
		[]string{"kind"},
	)
)

// Upload and playback surface metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_uploads_total",
			Help: "Total number of uploads by outcome",
		},
		[]string{"status"},
	)

	SurfaceClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_surface_clients",
			Help: "Number of connected playback surfaces",
		},
	)

	SurfaceEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_player_surface_events_total",
			Help: "Inbound playback surface events by type",
		},
		[]string{"event"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_player_memory_paused",
			Help: "1 while background jobs are held back by memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playlist_player_memory_gc_pauses_total",
			Help: "Total number of times memory pressure paused background jobs",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playlist_player_app_info",
			Help: "Build information, value is always 1",
		},
		[]string{"version", "commit", "go_version"},
	)
)
