package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/mediatypes"
)

// StreamMedia serves the stored upload with range support
func (h *Handlers) StreamMedia(w http.ResponseWriter, r *http.Request) {
	entry, path, ok := h.stored(w, r)
	if !ok {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Error("Stream: failed to open %s: %v", path, err)
		writeJSONError(w, "Failed to open media", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("Stream: failed to stat %s: %v", path, err)
		writeJSONError(w, "Failed to access media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mediatypes.ContentType(entry.MimeType))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, entry.Name, info.ModTime(), f)
}

// GetThumbnail returns the preview frame of an entry as JPEG
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	if h.thumbs == nil || !h.thumbs.Enabled() {
		writeJSONError(w, "Thumbnails disabled", http.StatusServiceUnavailable)
		return
	}

	entry, path, ok := h.stored(w, r)
	if !ok {
		return
	}

	thumb, ok := h.thumbs.Generate(r.Context(), entry.ID, path)
	if !ok {
		writeJSONError(w, "Thumbnail unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(thumb); err != nil {
		logging.Debug("Thumbnail: write failed for %s: %v", entry.ID, err)
	}
}

// stored resolves the {id} route variable to an entry and its file,
// writing a 404 when either is missing.
func (h *Handlers) stored(w http.ResponseWriter, r *http.Request) (catalog.MediaEntry, string, bool) {
	id := mux.Vars(r)["id"]
	entry, ok := h.player.Entry(id)
	if !ok {
		writeJSONError(w, "Entry not found", http.StatusNotFound)
		return catalog.MediaEntry{}, "", false
	}
	path, ok := h.uploads.Path(entry)
	if !ok {
		logging.Warn("Media: file for %s (%s) is missing", entry.Name, id)
		writeJSONError(w, "Media file not found", http.StatusNotFound)
		return catalog.MediaEntry{}, "", false
	}
	return entry, path, true
}
