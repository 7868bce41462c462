// Package metrics provides Prometheus instrumentation for the playlist player.
//
// All metrics are prefixed with "playlist_player_" and registered with the
// default registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of requests currently being served
//
// ## Catalog Metrics
//   - CatalogEntries, CatalogSizeBytes, CatalogDurationSeconds: current totals
//   - CatalogMutationsTotal: Counter by operation and status
//   - CatalogPersistDuration: Histogram of serialize-and-save time
//
// ## Store Metrics
//   - StoreOperationsTotal: Counter by backend, operation, and status
//   - StoreOperationDuration: Histogram by backend and operation
//
// ## Session Metrics
//   - SessionTransitionsTotal: Counter by event and resulting state
//   - SessionActiveIndex: Gauge of the active position (-1 when empty)
//
// ## Thumbnail and Task Metrics
//   - ThumbnailGenerationsTotal: Counter by status (success/error/timeout/cache_hit)
//   - ThumbnailGenerationDuration: Histogram of generation time
//   - TasksInFlight: Gauge of running background jobs
//   - TasksDiscardedTotal: Counter of results dropped because the entry was removed
//
// ## Upload and Surface Metrics
//   - UploadsTotal: Counter by outcome
//   - SurfaceClients: Gauge of connected playback surfaces
//   - SurfaceEventsTotal: Counter of inbound surface events by type
//
// ## Memory Metrics
//   - MemoryUsageRatio: Heap allocation relative to the memory limit
//   - MemoryPaused: 1 while background jobs are held back
//   - MemoryGCPauses: Counter of pause episodes
//
// # Usage
//
// Mount promhttp.Handler() on the metrics port:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// The [Collector] refreshes gauges derived from a [StatsProvider] on an
// interval, mirroring what the catalog records on each mutation.
//
// # Prometheus Queries
//
// Mutation error rate:
//
//	sum(rate(playlist_player_catalog_mutations_total{status="error"}[5m]))
//
// Thumbnail timeout ratio:
//
//	rate(playlist_player_thumbnail_generations_total{status="timeout"}[1h]) /
//	rate(playlist_player_thumbnail_generations_total[1h])
package metrics
