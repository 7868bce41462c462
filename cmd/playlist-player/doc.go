// Package main provides the entry point for the Playlist Player application.
//
// Playlist Player is a self-hosted service that keeps an ordered playlist of
// uploaded videos, drives a browser playback surface over a websocket and
// persists the playlist across restarts.
//
// # Commands
//
//	playlist-player [serve]   run the HTTP server (default)
//	playlist-player export    write the stored playlist as JSON or CSV
//	playlist-player stats     print count, size and duration totals
//
// export and stats read the store directly and can run while the server is
// stopped. Their --data-dir, --backend and --redis-addr flags default to
// DATA_DIR, STORE_BACKEND and REDIS_ADDR.
//
// # Application Lifecycle
//
// serve follows a structured initialization sequence:
//
//  1. Environment: loads .env, configures logging and GOMEMLIMIT
//  2. Configuration: reads environment variables and validates DATA_DIR
//  3. Store: opens the configured backend and restores the playlist
//  4. Components:
//     - Playback surface hub bound to the player
//     - Memory monitor gating the background worker pool
//     - Thumbnail generator (when ffmpeg is available)
//     - Upload service, plus the drop folder watcher when INGEST_DIR is set
//     - Metrics collector
//  5. HTTP Server Setup: routes, logging and compression middleware
//  6. Graceful Shutdown: handles SIGINT/SIGTERM and stops every component
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080): the playlist API, uploads, media
//     streaming, thumbnails, the /ws playback surface and health probes.
//  2. Metrics Server (default port 9090, optional): /metrics and /health.
//
// # Graceful Shutdown
//
//  1. Disconnect playback surfaces
//  2. Shutdown main HTTP server (30s timeout)
//  3. Stop the drop folder watcher, worker pool, memory monitor and collector
//  4. Shutdown metrics server (if running)
//  5. Close the playlist store
//
// # Build Requirements
//
// The sqlite backend requires CGO. ffmpeg and ffprobe on PATH enable
// thumbnails and duration probing.
package main
