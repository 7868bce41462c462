package mediatypes

import (
	"mime"
	"strings"
)

// AllowedMimeTypes lists the accepted video MIME types.
var AllowedMimeTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
	"video/avi":  true,
	"video/mov":  true,
	"video/mkv":  true,
	"video/ogg":  true,

	// Registered names for the same containers.
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
}

// extMimeTypes maps supported extensions to the MIME type recorded for them.
var extMimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/avi",
	".mov":  "video/mov",
	".mkv":  "video/mkv",
	".ogv":  "video/ogg",
	".ogg":  "video/ogg",
}

// servedTypes is what the stream endpoint sends back as Content-Type.
// Browsers only recognise the registered names.
var servedTypes = map[string]string{
	"video/avi": "video/x-msvideo",
	"video/mov": "video/quicktime",
	"video/mkv": "video/x-matroska",
}

// Normalize lowercases a MIME type and strips parameters such as codecs.
func Normalize(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// IsAllowed reports whether mimeType is an accepted video type.
func IsAllowed(mimeType string) bool {
	return AllowedMimeTypes[Normalize(mimeType)]
}

// MimeForExt returns the MIME type for a lowercase extension with its
// leading dot, or "" if the extension is not supported.
func MimeForExt(ext string) string {
	return extMimeTypes[strings.ToLower(ext)]
}

// ExtForMime returns the file extension used to store an upload of the
// given type. Unknown types get ".bin".
func ExtForMime(mimeType string) string {
	switch Normalize(mimeType) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/avi", "video/x-msvideo":
		return ".avi"
	case "video/mov", "video/quicktime":
		return ".mov"
	case "video/mkv", "video/x-matroska":
		return ".mkv"
	case "video/ogg":
		return ".ogv"
	}
	return ".bin"
}

// ContentType returns the Content-Type header to serve a stored entry with.
func ContentType(mimeType string) string {
	mt := Normalize(mimeType)
	if served, ok := servedTypes[mt]; ok {
		return served
	}
	if mt == "" {
		return "application/octet-stream"
	}
	return mt
}
