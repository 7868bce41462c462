package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"playlist-player/internal/catalog"
)

// PlaylistName is the name written into every export.
const PlaylistName = "Video Playlist"

// ErrEmptyPlaylist is returned when there is nothing to export.
var ErrEmptyPlaylist = errors.New("no videos to export")

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" (the default for "") and "csv".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type of the encoded document.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Video is one exported entry.
type Video struct {
	Name       string  `json:"name" csv:"name"`
	Size       int64   `json:"size" csv:"size"`
	Type       string  `json:"type" csv:"type"`
	Duration   float64 `json:"duration" csv:"duration"`
	UploadDate string  `json:"uploadDate,omitempty" csv:"uploadDate"`
}

// Document is the exported playlist.
type Document struct {
	Name    string  `json:"name"`
	Created string  `json:"created"`
	Videos  []Video `json:"videos"`
}

// Build assembles the export document.
func Build(entries []catalog.MediaEntry, now time.Time) (Document, error) {
	if len(entries) == 0 {
		return Document{}, ErrEmptyPlaylist
	}

	doc := Document{
		Name:    PlaylistName,
		Created: now.UTC().Format(time.RFC3339Nano),
		Videos:  make([]Video, 0, len(entries)),
	}
	for _, e := range entries {
		v := Video{
			Name:     e.Name,
			Size:     e.SizeBytes,
			Type:     e.MimeType,
			Duration: e.KnownDuration(),
		}
		if !e.UploadedAt.IsZero() {
			v.UploadDate = e.UploadedAt.UTC().Format(time.RFC3339Nano)
		}
		doc.Videos = append(doc.Videos, v)
	}
	return doc, nil
}

// Render encodes the playlist and returns the bytes with the download
// file name.
func Render(entries []catalog.MediaEntry, format Format, now time.Time) ([]byte, string, error) {
	doc, err := Build(entries, now)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := gocsv.Marshal(doc.Videos, &buf); err != nil {
			return nil, "", fmt.Errorf("encoding csv: %w", err)
		}
		data = buf.Bytes()
	default:
		format = FormatJSON
		data, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encoding json: %w", err)
		}
	}
	return data, FileName(format, now), nil
}

// FileName returns video-playlist-YYYY-MM-DD with the format extension.
func FileName(format Format, now time.Time) string {
	return fmt.Sprintf("video-playlist-%s.%s", now.UTC().Format(time.DateOnly), format)
}

// FormatDuration renders seconds as MM:SS, or H:MM:SS from one hour up.
// Unknown durations render as 00:00.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "00:00"
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatTotalDuration renders a playlist total as "1h 5m" or "3m 20s".
func FormatTotalDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "0m 0s"
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// FormatSize renders a byte count with binary units.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}
