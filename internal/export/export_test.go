package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"playlist-player/internal/catalog"
)

var exportTime = time.Date(2024, 6, 1, 22, 15, 0, 0, time.UTC)

func sampleEntries() []catalog.MediaEntry {
	return []catalog.MediaEntry{
		{ID: "1", Name: "intro.mp4", SizeBytes: 2048, MimeType: "video/mp4", DurationSeconds: 65,
			UploadedAt: time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC), SourceRef: "/api/media/1/stream"},
		{ID: "2", Name: "outro, final.webm", SizeBytes: 10, MimeType: "video/webm"},
	}
}

func TestRenderJSON(t *testing.T) {
	data, name, err := Render(sampleEntries(), FormatJSON, exportTime)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if name != "video-playlist-2024-06-01.json" {
		t.Errorf("file name = %q", name)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := Document{
		Name:    "Video Playlist",
		Created: "2024-06-01T22:15:00Z",
		Videos: []Video{
			{Name: "intro.mp4", Size: 2048, Type: "video/mp4", Duration: 65, UploadDate: "2024-05-30T08:00:00Z"},
			{Name: "outro, final.webm", Size: 10, Type: "video/webm"},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(string(data), "/api/media") || strings.Contains(string(data), `"id"`) {
		t.Error("export leaks ids or source references")
	}
}

func TestRenderCSV(t *testing.T) {
	data, name, err := Render(sampleEntries(), FormatCSV, exportTime)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if name != "video-playlist-2024-06-01.csv" {
		t.Errorf("file name = %q", name)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), data)
	}
	if lines[0] != "name,size,type,duration,uploadDate" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], `"outro, final.webm",10,video/webm`) {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestRenderEmpty(t *testing.T) {
	if _, _, err := Render(nil, FormatJSON, exportTime); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("Render(nil) error = %v, want ErrEmptyPlaylist", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "csv": FormatCSV} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) error = nil")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59.9, "00:59"},
		{65, "01:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTotalDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0m 0s"},
		{200, "3m 20s"},
		{3900, "1h 5m"},
	}
	for _, tt := range tests {
		if got := FormatTotalDuration(tt.in); got != tt.want {
			t.Errorf("FormatTotalDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{500 * 1024 * 1024, "500 MiB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
