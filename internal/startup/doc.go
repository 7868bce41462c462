// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from environment variables via [LoadConfig], after
// optional .env files have been applied with [LoadDotEnv]:
//
//   - DATA_DIR: Playlist store, uploads and thumbnails (default: /data)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - STORE_BACKEND: sqlite, bolt, file or redis (default: sqlite)
//   - REDIS_ADDR: Redis address for the redis backend (default: localhost:6379)
//   - INGEST_DIR: Drop folder watched for new videos (default: disabled)
//   - MAX_UPLOAD_SIZE: Largest accepted upload, bytes or "500MiB" (default: 500MiB)
//   - THUMBNAIL_TIMEOUT: Limit for one thumbnail generation (default: 10s)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FILE: Optional rotating log file
//   - LOG_STATIC_FILES: Log stream and thumbnail requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// [LogStoreInit], [LogThumbnailInit], [LogHTTPRoutes], [LogServerStarted]
// and the shutdown helpers print the sectioned startup and shutdown report.
package startup
