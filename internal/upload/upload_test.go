package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"playlist-player/internal/catalog"
	"playlist-player/internal/player"
	"playlist-player/internal/thumbnail"
	"playlist-player/internal/workers"
)

type stubExtractor struct{ duration float64 }

func (s stubExtractor) Duration(context.Context, string) (float64, error) {
	return s.duration, nil
}

func (s stubExtractor) Frame(context.Context, string, time.Duration) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 320, 200)), nil
}

func newService(t *testing.T, maxSize int64) (*Service, *player.Player, string) {
	t.Helper()
	dir := t.TempDir()
	p := player.New(catalog.New(nil), player.Options{})
	svc, err := NewService(Config{Dir: dir, MaxSize: maxSize}, p, nil, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, p, dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	svc, p, dir := newService(t, 0)

	_, err := svc.Ingest(context.Background(), "clip.flv", "video/x-flv", 10, strings.NewReader("0123456789"))

	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Ingest() error = %v, want unsupported type", err)
	}
	if verr.Name != "clip.flv" {
		t.Errorf("ValidationError.Name = %q", verr.Name)
	}
	if n := len(p.Entries()); n != 0 {
		t.Errorf("catalog has %d entries, want 0", n)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Errorf("files written for rejected upload: %v", files)
	}
}

func TestIngestRejectsTooLarge(t *testing.T) {
	tests := []struct {
		name     string
		declared int64
		body     string
	}{
		{"declared size", 11, "small"},
		{"actual body", 4, "this body is longer than ten bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, p, dir := newService(t, 10)

			_, err := svc.Ingest(context.Background(), "big.mp4", "video/mp4", tt.declared, strings.NewReader(tt.body))
			if !errors.Is(err, ErrTooLarge) {
				t.Fatalf("Ingest() error = %v, want ErrTooLarge", err)
			}
			if n := len(p.Entries()); n != 0 {
				t.Errorf("catalog has %d entries, want 0", n)
			}
			if files := storedFiles(t, dir); len(files) != 0 {
				t.Errorf("files left behind: %v", files)
			}
		})
	}
}

func TestIngestStoresAndAppends(t *testing.T) {
	svc, p, dir := newService(t, 0)
	svc.newID = func() string { return "fixed-id" }
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.FixedZone("x", 3600)) }

	body := []byte("not really a video")
	entry, err := svc.Ingest(context.Background(), "../Trip.MOV", "video/quicktime", int64(len(body)), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	want := catalog.MediaEntry{
		ID:         "fixed-id",
		Name:       "Trip.MOV",
		SizeBytes:  int64(len(body)),
		MimeType:   "video/quicktime",
		UploadedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		SourceRef:  "/api/media/fixed-id/stream",
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	path, ok := svc.Path(entry)
	if !ok || path != filepath.Join(dir, "fixed-id.mov") {
		t.Errorf("Path() = %q, %v", path, ok)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, body) {
		t.Errorf("stored content = %q, %v", data, err)
	}

	if st := p.State(); st.ActiveID != "fixed-id" {
		t.Errorf("first upload not loaded, state %+v", st)
	}
}

func TestRemovalDeletesStoredFile(t *testing.T) {
	svc, p, _ := newService(t, 0)

	entry, err := svc.Ingest(context.Background(), "a.mp4", "video/mp4", 3, strings.NewReader("abc"))
	if err != nil {
		t.Fatal(err)
	}
	path, ok := svc.Path(entry)
	if !ok {
		t.Fatal("stored file missing")
	}

	if err := p.Remove(context.Background(), entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stored file still present: %v", err)
	}
}

func TestBackgroundWorkRecordsDuration(t *testing.T) {
	dir := t.TempDir()
	p := player.New(catalog.New(nil), player.Options{})
	pool := workers.NewPool(2)
	defer pool.Close()
	thumbs := thumbnail.NewGenerator(filepath.Join(dir, "thumbs"), stubExtractor{duration: 77}, time.Second)

	svc, err := NewService(Config{Dir: filepath.Join(dir, "uploads")}, p, pool, thumbs)
	if err != nil {
		t.Fatal(err)
	}

	entry, err := svc.Ingest(context.Background(), "a.webm", "video/webm", 4, strings.NewReader("webm"))
	if err != nil {
		t.Fatal(err)
	}
	pool.Wait()

	got, ok := p.Entry(entry.ID)
	if !ok || got.DurationSeconds != 77 {
		t.Errorf("entry after probe = %+v, %v", got, ok)
	}
	if _, cached := thumbs.Cached(entry.ID); !cached {
		t.Error("thumbnail not cached")
	}

	if err := p.Remove(context.Background(), entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, cached := thumbs.Cached(entry.ID); cached {
		t.Error("thumbnail survived removal")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Name: "x.flv", Reason: ErrUnsupportedType, Detail: "video/x-flv"}
	if got := err.Error(); got != "x.flv: unsupported type (video/x-flv)" {
		t.Errorf("Error() = %q", got)
	}
}
