package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/mediatypes"
	"playlist-player/internal/upload"
)

// uploadField is the multipart field carrying the files.
const uploadField = "files"

// UploadResult reports the outcome for one uploaded file.
type UploadResult struct {
	Name   string              `json:"name"`
	OK     bool                `json:"ok"`
	Entry  *catalog.MediaEntry `json:"entry,omitempty"`
	Reason string              `json:"reason,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// UploadResponse lists the per-file results in request order.
type UploadResponse struct {
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Results  []UploadResult `json:"results"`
}

// Upload ingests every file in the "files" field. Each file is accepted or
// rejected on its own; the status is 200 when at least one was accepted.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		writeJSONError(w, "Expected a multipart/form-data body", http.StatusBadRequest)
		return
	}

	resp := UploadResponse{Results: []UploadResult{}}
	status := http.StatusOK

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logging.Warn("Upload: malformed multipart body: %v", err)
			writeJSONError(w, "Malformed multipart body", http.StatusBadRequest)
			return
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		result, code := h.ingestPart(r, part)
		_ = part.Close()

		resp.Results = append(resp.Results, result)
		if result.OK {
			resp.Accepted++
		} else {
			resp.Rejected++
			if resp.Accepted == 0 && status == http.StatusOK {
				status = code
			}
		}
	}

	if len(resp.Results) == 0 {
		writeJSONError(w, "No files in field \"files\"", http.StatusBadRequest)
		return
	}
	if resp.Accepted > 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, resp)
}

func (h *Handlers) ingestPart(r *http.Request, part *multipart.Part) (UploadResult, int) {
	name := part.FileName()
	mimeType := partMimeType(part)

	entry, err := h.uploads.Ingest(r.Context(), name, mimeType, -1, part)
	if err != nil {
		result := UploadResult{Name: name, Error: err.Error()}
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			result.Name = verr.Name
			result.Reason = verr.Reason.Error()
		}
		return result, errorStatus(err)
	}
	return UploadResult{Name: entry.Name, OK: true, Entry: &entry}, http.StatusOK
}

// partMimeType trusts the declared type unless the client sent none or a
// generic one, in which case the extension decides.
func partMimeType(part *multipart.Part) string {
	declared := mediatypes.Normalize(part.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mediatypes.MimeForExt(filepath.Ext(part.FileName())); byExt != "" {
		return byExt
	}
	return declared
}
