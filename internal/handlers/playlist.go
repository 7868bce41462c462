package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"playlist-player/internal/export"
	"playlist-player/internal/logging"
	"playlist-player/internal/order"
)

// sortRequest is the body of POST /api/playlist/sort.
type sortRequest struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

type endedRequest struct {
	ID string `json:"id"`
}

// GetPlaylist returns the playlist filtered by the q parameter
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	writeJSONValue(w, h.player.Snapshot(r.URL.Query().Get("q")))
}

// ClearPlaylist removes every entry
func (h *Handlers) ClearPlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSONValue(w, h.player.Snapshot(""))
}

// RemoveEntry deletes one entry by id
func (h *Handlers) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.player.Entry(id); !ok {
		writeJSONError(w, "Entry not found", http.StatusNotFound)
		return
	}
	if err := h.player.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSONValue(w, h.player.Snapshot(""))
}

// LoadEntry makes an entry the active one
func (h *Handlers) LoadEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.player.Load(id) {
		writeJSONError(w, "Entry not found", http.StatusNotFound)
		return
	}
	writeJSONValue(w, h.player.Snapshot(""))
}

// SortPlaylist reorders the playlist by a key and direction
func (h *Handlers) SortPlaylist(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	spec, err := order.ParseSortSpec(req.Key, req.Direction)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.player.Sort(r.Context(), spec); err != nil {
		writeError(w, err)
		return
	}
	writeJSONValue(w, h.player.Snapshot(""))
}

// ShufflePlaylist installs a random order
func (h *Handlers) ShufflePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Shuffle(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSONValue(w, h.player.Snapshot(""))
}

// SessionEnded advances past the entry named in the body after it finished
// playing. Reports for an entry that is no longer active change nothing.
func (h *Handlers) SessionEnded(w http.ResponseWriter, r *http.Request) {
	var req endedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		writeJSONError(w, "id is required", http.StatusBadRequest)
		return
	}
	writeJSONValue(w, h.player.NaturalEnd(req.ID))
}

// GetStats returns aggregate playlist statistics
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	writeJSONValue(w, h.player.Stats())
}

// ExportPlaylist downloads the playlist as JSON or CSV
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, name, err := export.Render(h.player.Entries(), format, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.Debug("Export: write failed: %v", err)
	}
}
