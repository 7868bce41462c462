// Package export renders the playlist as a downloadable document and
// formats durations and sizes for display.
//
// The JSON document has the shape
//
//	{"name": "Video Playlist", "created": "<RFC 3339>", "videos": [{...}]}
//
// and the CSV variant carries the same per-video columns. File names
// embed the export date: video-playlist-2024-06-01.json.
package export
