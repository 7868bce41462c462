// Package middleware provides HTTP middleware for the playlist player.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by mux route template
//   - gzip compression for JSON and CSV API responses
//
// The logging and metrics wrappers pass http.Hijacker through so the
// playback surface websocket can upgrade behind them.
package middleware
