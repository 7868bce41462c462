// Package handlers provides the HTTP API of the playlist player.
//
// It includes handlers for:
//   - Listing, filtering, sorting and shuffling the playlist
//   - Selecting entries and reporting the natural end of playback
//   - Uploading videos and streaming them back with range support
//   - Thumbnails and aggregate statistics
//   - JSON and CSV playlist export
//   - Health checks and version information
//
// Errors are reported as JSON objects of the form {"error": "..."}.
// Validation failures map to 400, 413 or 415 and unknown ids to 404.
// Router assembles every route behind the logging, metrics and
// compression middleware.
package handlers
