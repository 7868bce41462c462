package catalog

import (
	"encoding/json"
	"math"
	"time"
)

// MediaEntry describes one uploaded video.
type MediaEntry struct {
	ID              string
	Name            string
	SizeBytes       int64
	MimeType        string
	DurationSeconds float64
	UploadedAt      time.Time
	// SourceRef is the handle the playback surface loads. The upload
	// subsystem owns whatever it points at.
	SourceRef string
}

// wireEntry is the persisted JSON shape.
type wireEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	Size       int64   `json:"size"`
	Type       string  `json:"type"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"uploadDate,omitempty"`
}

// KnownDuration reports the duration with NaN, infinities and negatives
// collapsed to 0.
func (e MediaEntry) KnownDuration() float64 {
	d := e.DurationSeconds
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// MarshalJSON writes the entry in the persisted layout.
func (e MediaEntry) MarshalJSON() ([]byte, error) {
	w := wireEntry{
		ID:       e.ID,
		Name:     e.Name,
		URL:      e.SourceRef,
		Size:     e.SizeBytes,
		Type:     e.MimeType,
		Duration: e.KnownDuration(),
	}
	if !e.UploadedAt.IsZero() {
		w.UploadDate = e.UploadedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the persisted layout. A missing or unparseable
// uploadDate is treated as the zero time.
func (e *MediaEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var uploaded time.Time
	if w.UploadDate != "" {
		if t, err := time.Parse(time.RFC3339Nano, w.UploadDate); err == nil {
			uploaded = t
		}
	}

	*e = MediaEntry{
		ID:              w.ID,
		Name:            w.Name,
		SizeBytes:       w.Size,
		MimeType:        w.Type,
		DurationSeconds: w.Duration,
		UploadedAt:      uploaded,
		SourceRef:       w.URL,
	}
	return nil
}
